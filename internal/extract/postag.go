package extract

import (
	"strings"
	"unicode"
)

// POS is a coarse part-of-speech class
type POS string

const (
	POSNoun  POS = "NOUN"
	POSVerb  POS = "VERB"
	POSAdj   POS = "ADJ"
	POSAdv   POS = "ADV"
	POSOther POS = "OTHER"
)

// TaggedToken is a word with its part-of-speech class
type TaggedToken struct {
	Text string
	POS  POS
}

// Tagging is the output of a Tagger over one text
type Tagging struct {
	Tokens   []TaggedToken
	Entities int // Named-entity spans
}

// Tagger assigns parts of speech and detects named entities
type Tagger interface {
	Tag(text string) Tagging
}

// RuleTagger is a lexicon and suffix based tagger.
// Entities are runs of capitalized words that do not start a sentence, plus acronyms.
type RuleTagger struct {
	lexicon map[string]POS
}

// NewRuleTagger creates a rule tagger with the built-in English lexicon
func NewRuleTagger() *RuleTagger {
	lexicon := make(map[string]POS)
	add := func(pos POS, words ...string) {
		for _, w := range words {
			lexicon[w] = pos
		}
	}

	add(POSOther,
		"the", "a", "an", "this", "that", "these", "those", "of", "in", "on", "at",
		"to", "for", "with", "by", "from", "as", "into", "about", "between", "during",
		"through", "and", "or", "but", "nor", "if", "than", "then", "because", "while",
		"whereas", "although", "it", "its", "they", "their", "them", "we", "our", "us",
		"he", "she", "his", "her", "i", "you", "which", "who", "whom", "whose", "what",
		"not", "no", "all", "each", "both", "some", "any", "such", "other", "one", "two")
	add(POSVerb,
		"is", "are", "was", "were", "be", "been", "being", "has", "have", "had",
		"do", "does", "did", "can", "could", "may", "might", "must", "shall", "should",
		"will", "would", "show", "shows", "suggest", "suggests", "indicate", "indicates",
		"appear", "appears", "seem", "seems", "tend", "tends", "remain", "remains",
		"found", "made", "took", "gave", "led", "became", "include", "includes")
	add(POSAdv,
		"also", "however", "furthermore", "moreover", "therefore", "thus", "hence",
		"very", "often", "still", "yet", "here", "there", "now", "well", "nevertheless",
		"nonetheless", "overall", "only", "even", "further", "again", "already")
	add(POSAdj,
		"significant", "new", "high", "low", "large", "small", "important", "different",
		"several", "many", "more", "most", "less", "least", "same", "good", "major",
		"clinical", "public", "social", "early", "late", "first", "last", "novel")

	return &RuleTagger{lexicon: lexicon}
}

// Tag classifies every word token of text
func (t *RuleTagger) Tag(text string) Tagging {
	var tagging Tagging

	for _, sentence := range splitSentences(text) {
		inEntity := false
		for i, raw := range splitTokens(sentence) {
			tagging.Tokens = append(tagging.Tokens, TaggedToken{
				Text: raw,
				POS:  t.classify(strings.ToLower(raw)),
			})

			if isEntityToken(raw, i == 0) {
				if !inEntity {
					tagging.Entities++
				}
				inEntity = true
			} else {
				inEntity = false
			}
		}
	}

	return tagging
}

func (t *RuleTagger) classify(word string) POS {
	if pos, ok := t.lexicon[word]; ok {
		return pos
	}
	if !isAlphabetic(word) {
		return POSOther
	}

	switch {
	case strings.HasSuffix(word, "ly"):
		return POSAdv
	case hasAnySuffix(word, "ous", "ful", "ive", "able", "ible", "ical", "less", "ary", "ic", "al"):
		return POSAdj
	case hasAnySuffix(word, "ize", "ise", "ify", "ate", "ed", "ing", "en"):
		return POSVerb
	default:
		return POSNoun
	}
}

// isEntityToken reports whether a token looks like part of a proper name
func isEntityToken(raw string, sentenceStart bool) bool {
	runes := []rune(raw)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	if isAcronym(raw) {
		return true
	}
	return !sentenceStart
}

func isAcronym(raw string) bool {
	upper := 0
	for _, r := range raw {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return upper >= 2
}

func hasAnySuffix(word string, suffixes ...string) bool {
	for _, s := range suffixes {
		if len(word) > len(s)+2 && strings.HasSuffix(word, s) {
			return true
		}
	}
	return false
}
