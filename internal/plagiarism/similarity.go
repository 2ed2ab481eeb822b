package plagiarism

import "strings"

// DefaultThreshold is the Jaccard similarity a result must exceed to count as a match
const DefaultThreshold = 0.8

// Jaccard returns |A∩B| / |A∪B| over lower-cased whitespace-split word sets.
// It returns 0 when either set is empty.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// Similar reports whether two texts overlap above DefaultThreshold
func Similar(a, b string) bool {
	return SimilarAt(a, b, DefaultThreshold)
}

// SimilarAt reports whether Jaccard similarity exceeds threshold.
// Either side being empty is never similar.
func SimilarAt(a, b string, threshold float64) bool {
	if len(wordSet(a)) == 0 || len(wordSet(b)) == 0 {
		return false
	}
	return Jaccard(a, b) > threshold
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
