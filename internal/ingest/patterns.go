package ingest

import "github.com/ppiankov/authentica/internal/model"

// Pattern tags attached to documents whose features cross the thresholds below
const (
	PatternHighConnectors = "high_connectors"
	PatternHighHedging    = "high_hedging"
	PatternFormalPhrases  = "formal_phrases"
	PatternLongSentences  = "long_sentences"
)

// Patterns returns the pattern tags of a feature set in a fixed order
func Patterns(f model.FeatureSet) []string {
	patterns := []string{}
	if f.Empty {
		return patterns
	}
	if f.ConnectorDensity > 0.025 {
		patterns = append(patterns, PatternHighConnectors)
	}
	if f.HedgingDensity > 0.02 {
		patterns = append(patterns, PatternHighHedging)
	}
	if f.AIPhraseCount > 1 {
		patterns = append(patterns, PatternFormalPhrases)
	}
	if f.AvgSentenceLength > 28 {
		patterns = append(patterns, PatternLongSentences)
	}
	return patterns
}
