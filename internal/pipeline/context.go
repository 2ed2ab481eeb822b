package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/authentica/internal/model"
)

// Pattern hint thresholds used when building the detection context
const (
	hintConnectorDensity = 0.02
	hintHedgingDensity   = 0.015
	hintAIPhraseCount    = 1

	contextKeywords      = 10
	contextMatches       = 3
	contextPhrasePreview = 100
)

// DetectionContext renders the text embedded for similarity retrieval of a stored document.
// It combines title, text, leading keywords, pattern tags, and hints for elevated features.
func DetectionContext(doc model.Document, f model.FeatureSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\nAbstract: %s\n\n", doc.Title, doc.Text)

	if len(doc.Keywords) > 0 {
		keywords := doc.Keywords
		if len(keywords) > contextKeywords {
			keywords = keywords[:contextKeywords]
		}
		fmt.Fprintf(&b, "Keywords: %s\n\n", strings.Join(keywords, ", "))
	}

	if len(doc.Patterns) > 0 {
		fmt.Fprintf(&b, "Linguistic patterns: %s\n\n", strings.Join(doc.Patterns, ", "))
	}

	if f.Empty {
		return b.String()
	}
	if f.ConnectorDensity > hintConnectorDensity {
		b.WriteString("High connector word usage detected.\n")
	}
	if f.HedgingDensity > hintHedgingDensity {
		b.WriteString("High hedging language detected.\n")
	}
	if f.AIPhraseCount > hintAIPhraseCount {
		b.WriteString("Formal AI-style phrases detected.\n")
	}

	return b.String()
}

// PlagiarismContext renders the text embedded alongside a plagiarism report
func PlagiarismContext(title, text string, report model.PlagiarismReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nText: %s\n\n", title, text)

	if len(report.Matches) > 0 {
		b.WriteString("Potential plagiarism matches found:\n")
		for i, m := range report.Matches {
			if i == contextMatches {
				break
			}
			fmt.Fprintf(&b, "- %s...\n", runePrefix(m.Phrase, contextPhrasePreview))
		}
	}

	fmt.Fprintf(&b, "Plagiarism score: %.3f", report.Score)
	return b.String()
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
