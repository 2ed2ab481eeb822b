package ingest

import (
	"sort"
	"strings"
	"unicode"
)

// MaxKeywords is the number of keywords kept per document
const MaxKeywords = 15

// academicStopwords are frequent in every abstract and carry no topic
var academicStopwords = []string{
	"study", "research", "analysis", "paper", "article",
	"findings", "results", "conclusion", "method", "approach",
}

// stopwords is the English stop-word list applied before ranking
var stopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours",
	"yourself", "yourselves", "he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "these", "those", "am", "is", "are", "was", "were", "be",
	"been", "being", "have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of", "at", "by",
	"for", "with", "about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out", "on", "off", "over",
	"under", "again", "further", "then", "once", "here", "there", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "can", "will", "just",
	"don", "should", "now", "shan", "shouldn", "wasn", "weren", "won", "wouldn", "couldn",
	"didn", "doesn", "hadn", "hasn", "haven", "isn", "mightn", "mustn", "needn", "aren",
	"ain", "could", "would", "might", "must", "also", "within", "without", "upon", "among",
}

var skipWords = func() map[string]struct{} {
	m := make(map[string]struct{}, len(stopwords)+len(academicStopwords))
	for _, w := range stopwords {
		m[w] = struct{}{}
	}
	for _, w := range academicStopwords {
		m[w] = struct{}{}
	}
	return m
}()

// Keywords returns the limit most frequent content words of title and text.
// Candidates are alphabetic, longer than three letters, and not stop words.
// Ties keep first-occurrence order.
func Keywords(title, text string, limit int) []string {
	combined := strings.ToLower(strings.TrimSpace(title + " " + text))
	if combined == "" || limit <= 0 {
		return []string{}
	}

	tokens := strings.FieldsFunc(combined, func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '-' && r != '\'')
	})

	counts := map[string]int{}
	var order []string
	for _, tok := range tokens {
		if len([]rune(tok)) <= 3 || !isAlpha(tok) {
			continue
		}
		if _, skip := skipWords[tok]; skip {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
