package extract

import (
	"strings"
	"unicode"
)

// readability holds standard readability indices for one text
type readability struct {
	FleschReadingEase    float64
	FleschKincaidGrade   float64
	AutomatedReadability float64
}

// computeReadability scores text with the Flesch, Flesch-Kincaid and ARI formulas.
// Zero words or sentences yield zero for every index.
func computeReadability(tokens []string, sentenceCount int) readability {
	words := 0
	syllables := 0
	chars := 0
	for _, t := range tokens {
		words++
		syllables += countSyllables(t)
		for _, r := range t {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				chars++
			}
		}
	}

	if words == 0 || sentenceCount == 0 {
		return readability{}
	}

	wordsPerSentence := float64(words) / float64(sentenceCount)
	syllablesPerWord := float64(syllables) / float64(words)
	charsPerWord := float64(chars) / float64(words)

	return readability{
		FleschReadingEase:    206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord,
		FleschKincaidGrade:   0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59,
		AutomatedReadability: 4.71*charsPerWord + 0.5*wordsPerSentence - 21.43,
	}
}

// countSyllables estimates syllables by counting vowel groups.
// A trailing silent "e" is dropped and every word has at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(word)

	count := 0
	prevVowel := false
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			prevVowel = false
			continue
		}
		letters++
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if letters == 0 {
		return 1
	}
	if count > 1 && strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
