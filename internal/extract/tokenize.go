package extract

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence even when followed by whitespace
var abbreviations = map[string]bool{
	"e.g.": true, "i.e.": true, "et al.": true, "al.": true, "etc.": true,
	"fig.": true, "figs.": true, "eq.": true, "vs.": true, "no.": true,
	"dr.": true, "mr.": true, "mrs.": true, "ms.": true, "prof.": true,
	"approx.": true, "resp.": true, "vol.": true, "cf.": true,
}

// splitSentences splits text on '.', '!' and '?' followed by whitespace or end of text
func splitSentences(text string) []string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	runes := []rune(text)

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range runes {
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Terminator must be followed by whitespace or end of text
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && endsWithAbbreviation(current.String()) {
			continue
		}
		flush()
	}
	flush()

	return sentences
}

// endsWithAbbreviation reports whether the buffered sentence ends with a known abbreviation
func endsWithAbbreviation(s string) bool {
	lower := strings.ToLower(s)
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	if abbreviations[last] {
		return true
	}
	if len(fields) >= 2 && abbreviations[fields[len(fields)-2]+" "+last] {
		return true
	}
	return false
}

// tokenizeWords lower-cases text and splits it into word tokens.
// Hyphens and apostrophes are kept when they join two word characters.
func tokenizeWords(text string) []string {
	return splitTokens(strings.ToLower(text))
}

// splitTokens splits text into word tokens preserving case
func splitTokens(text string) []string {
	runes := []rune(text)

	var tokens []string
	var current strings.Builder

	isWordRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			current.WriteRune(r)
		case (r == '-' || r == '\'' || r == '’') && current.Len() > 0 &&
			i+1 < len(runes) && isWordRune(runes[i+1]):
			current.WriteRune(r)
		default:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isAlphabetic reports whether a token consists of letters only (interior hyphens and apostrophes allowed)
func isAlphabetic(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if unicode.IsLetter(r) || r == '-' || r == '\'' || r == '’' {
			continue
		}
		return false
	}
	return true
}

// alphabeticWords filters tokens down to alphabetic ones
func alphabeticWords(tokens []string) []string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if isAlphabetic(t) {
			words = append(words, t)
		}
	}
	return words
}

// countVocabulary counts occurrences of vocabulary entries in a token stream.
// Multi-word entries match as consecutive tokens.
func countVocabulary(words []string, vocabulary []string) int {
	single := make(map[string]bool)
	var multi [][]string
	for _, entry := range vocabulary {
		parts := strings.Fields(entry)
		switch len(parts) {
		case 0:
		case 1:
			single[parts[0]] = true
		default:
			multi = append(multi, parts)
		}
	}

	count := 0
	for i, w := range words {
		if single[w] {
			count++
		}
		for _, phrase := range multi {
			if hasPhraseAt(words, i, phrase) {
				count++
			}
		}
	}
	return count
}

func hasPhraseAt(words []string, at int, phrase []string) bool {
	if at+len(phrase) > len(words) {
		return false
	}
	for j, p := range phrase {
		if words[at+j] != p {
			return false
		}
	}
	return true
}
