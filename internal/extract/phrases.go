package extract

import (
	"strings"

	"github.com/ppiankov/authentica/internal/model"
)

const (
	// DefaultPhraseMinLength is the default minimum key phrase length in characters
	DefaultPhraseMinLength = 15

	maxKeyPhrases = 10
	windowSize    = 8

	// genericThreshold is the stop-word share above which a phrase is too generic to search
	genericThreshold = 0.6
)

var genericWords = map[string]bool{
	"the": true, "this": true, "that": true, "these": true, "those": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true, "with": true,
}

// SelectKeyPhrases picks up to 10 candidate phrases for exact-phrase search.
// Whole sentences come first, then every 8-word window; both must be at least
// minLength characters and not generic.
func SelectKeyPhrases(text string, minLength int) []model.KeyPhrase {
	if minLength <= 0 {
		minLength = DefaultPhraseMinLength
	}

	var phrases []model.KeyPhrase
	keep := func(candidate string, origin model.PhraseOrigin) {
		n := len([]rune(candidate))
		if n < minLength || IsGeneric(candidate) {
			return
		}
		phrases = append(phrases, model.KeyPhrase{Text: candidate, Length: n, Origin: origin})
	}

	for _, sentence := range strings.Split(text, ".") {
		keep(strings.TrimSpace(sentence), model.OriginSentence)
	}

	words := strings.Fields(text)
	for i := 0; i+windowSize <= len(words); i++ {
		keep(strings.Join(words[i:i+windowSize], " "), model.OriginWindow)
	}

	if len(phrases) > maxKeyPhrases {
		phrases = phrases[:maxKeyPhrases]
	}
	return phrases
}

// IsGeneric reports whether more than 60% of the phrase's words are stop words.
// An empty phrase is generic.
func IsGeneric(phrase string) bool {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 0 {
		return true
	}
	generic := 0
	for _, w := range words {
		if genericWords[w] {
			generic++
		}
	}
	return float64(generic)/float64(len(words)) > genericThreshold
}
