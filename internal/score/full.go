package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/authentica/internal/model"
)

// Full scores with the six-row band table used for corpus enrichment.
// Only the highest matching band of each row fires; rows are summed and capped at 1.
type Full struct{}

// NewFull creates the full-feature strategy
func NewFull() *Full {
	return &Full{}
}

// Name implements Strategy
func (s *Full) Name() string {
	return StrategyFull
}

// Score implements Strategy
func (s *Full) Score(f model.FeatureSet) float64 {
	if f.Empty {
		return 0
	}

	total := s.connectors(f) + s.hedging(f) + s.aiPhrases(f) +
		s.sentenceLength(f) + s.readability(f) + s.vocabulary(f)

	return clamp(math.Min(total, 1.0), 0, 1)
}

// connectors: >0.025 → 0.35, >0.02 → 0.20, >0.015 → 0.10
func (s *Full) connectors(f model.FeatureSet) float64 {
	switch d := f.ConnectorDensity; {
	case d > 0.025:
		return 0.35
	case d > 0.02:
		return 0.20
	case d > 0.015:
		return 0.10
	}
	return 0
}

// hedging: >0.025 → 0.30, >0.02 → 0.20, >0.015 → 0.10
func (s *Full) hedging(f model.FeatureSet) float64 {
	switch d := f.HedgingDensity; {
	case d > 0.025:
		return 0.30
	case d > 0.02:
		return 0.20
	case d > 0.015:
		return 0.10
	}
	return 0
}

// aiPhrases: >2 → 0.25, >1 → 0.15, >0 → 0.05
func (s *Full) aiPhrases(f model.FeatureSet) float64 {
	switch n := f.AIPhraseCount; {
	case n > 2:
		return 0.25
	case n > 1:
		return 0.15
	case n > 0:
		return 0.05
	}
	return 0
}

// sentenceLength: 22..32 → 0.20, >35 → 0.10
func (s *Full) sentenceLength(f model.FeatureSet) float64 {
	switch l := f.AvgSentenceLength; {
	case l >= 22 && l <= 32:
		return 0.20
	case l > 35:
		return 0.10
	}
	return 0
}

// readability: (ease >55 and domain terms >3) → 0.15, ease >60 → 0.10
func (s *Full) readability(f model.FeatureSet) float64 {
	switch {
	case f.FleschReadingEase > 55 && f.DomainTerms > 3:
		return 0.15
	case f.FleschReadingEase > 60:
		return 0.10
	}
	return 0
}

// vocabulary: unique ratio <0.7 → 0.15, <0.75 → 0.10
func (s *Full) vocabulary(f model.FeatureSet) float64 {
	switch r := f.UniqueWordRatio; {
	case r < 0.7:
		return 0.15
	case r < 0.75:
		return 0.10
	}
	return 0
}

// Reasoning implements Strategy
func (s *Full) Reasoning(f model.FeatureSet, score float64) []string {
	var reasons []string
	if f.Empty {
		return []string{HumanReasoning}
	}

	if f.ConnectorDensity > 0.025 {
		reasons = append(reasons, reasonConnectors)
	}
	if f.AIPhraseCount > 1 {
		reasons = append(reasons, reasonAIPhrases)
	}
	if f.AvgSentenceLength >= 22 && f.AvgSentenceLength <= 32 {
		reasons = append(reasons, reasonSentence)
	}
	if f.UniqueWordRatio < 0.7 {
		reasons = append(reasons, reasonVocabulary)
	}
	if f.HedgingDensity > 0.025 {
		reasons = append(reasons, reasonHedging)
	}
	if s.readability(f) > 0 {
		reasons = append(reasons, reasonReadable)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, HumanReasoning)
	}
	return reasons
}

// Signals implements Strategy
func (s *Full) Signals(f model.FeatureSet) []model.Signal {
	if f.Empty {
		return nil
	}

	return []model.Signal{
		rowSignal(model.SignalConnectors, f.ConnectorDensity, s.connectors(f), 0.35,
			fmt.Sprintf("Connector density: %.3f", f.ConnectorDensity),
			"connector_density >0.025 → 0.35; >0.02 → 0.20; >0.015 → 0.10"),
		rowSignal(model.SignalHedging, f.HedgingDensity, s.hedging(f), 0.30,
			fmt.Sprintf("Hedging density: %.3f", f.HedgingDensity),
			"hedging_density >0.025 → 0.30; >0.02 → 0.20; >0.015 → 0.10"),
		rowSignal(model.SignalFormalPhrase, float64(f.AIPhraseCount), s.aiPhrases(f), 0.25,
			fmt.Sprintf("Formal AI phrases: %d", f.AIPhraseCount),
			"ai_phrase_count >2 → 0.25; >1 → 0.15; >0 → 0.05"),
		rowSignal(model.SignalSentenceLen, f.AvgSentenceLength, s.sentenceLength(f), 0.20,
			fmt.Sprintf("Average sentence length: %.1f words", f.AvgSentenceLength),
			"22 <= avg_sentence_length <= 32 → 0.20; >35 → 0.10"),
		rowSignal(model.SignalReadability, f.FleschReadingEase, s.readability(f), 0.15,
			fmt.Sprintf("Flesch reading ease: %.1f with %d domain terms", f.FleschReadingEase, f.DomainTerms),
			"flesch_reading_ease >55 and covid_terms >3 → 0.15; flesch_reading_ease >60 → 0.10"),
		rowSignal(model.SignalVocabulary, f.UniqueWordRatio, s.vocabulary(f), 0.15,
			fmt.Sprintf("Unique word ratio: %.2f", f.UniqueWordRatio),
			"unique_word_ratio <0.7 → 0.15; <0.75 → 0.10"),
	}
}
