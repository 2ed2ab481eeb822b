package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/authentica/internal/model"
)

// Reduced scores with four features for lightweight ad-hoc detection.
// It has no hedging or readability term.
type Reduced struct{}

// NewReduced creates the reduced-feature strategy
func NewReduced() *Reduced {
	return &Reduced{}
}

// Name implements Strategy
func (s *Reduced) Name() string {
	return StrategyReduced
}

// Score implements Strategy
func (s *Reduced) Score(f model.FeatureSet) float64 {
	if f.Empty {
		return 0
	}

	total := s.connectors(f) + s.aiPhrases(f) + s.sentenceLength(f) + s.vocabulary(f)
	return clamp(math.Min(total, 1.0), 0, 1)
}

func (s *Reduced) connectors(f model.FeatureSet) float64 {
	if f.ConnectorDensity > 0.025 {
		return 0.35
	}
	return 0
}

func (s *Reduced) aiPhrases(f model.FeatureSet) float64 {
	if f.AIPhraseCount > 1 {
		return 0.25
	}
	return 0
}

func (s *Reduced) sentenceLength(f model.FeatureSet) float64 {
	if f.AvgSentenceLength >= 22 && f.AvgSentenceLength <= 32 {
		return 0.20
	}
	return 0
}

func (s *Reduced) vocabulary(f model.FeatureSet) float64 {
	if f.UniqueWordRatio < 0.7 {
		return 0.15
	}
	return 0
}

// Reasoning implements Strategy
func (s *Reduced) Reasoning(f model.FeatureSet, score float64) []string {
	var reasons []string
	if s.connectors(f) > 0 {
		reasons = append(reasons, reasonConnectors)
	}
	if s.aiPhrases(f) > 0 {
		reasons = append(reasons, reasonAIPhrases)
	}
	if s.sentenceLength(f) > 0 {
		reasons = append(reasons, reasonSentence)
	}
	if !f.Empty && s.vocabulary(f) > 0 {
		reasons = append(reasons, reasonVocabulary)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, HumanReasoning)
	}
	return reasons
}

// Signals implements Strategy
func (s *Reduced) Signals(f model.FeatureSet) []model.Signal {
	if f.Empty {
		return nil
	}

	return []model.Signal{
		rowSignal(model.SignalConnectors, f.ConnectorDensity, s.connectors(f), 0.35,
			fmt.Sprintf("Connector density: %.3f", f.ConnectorDensity),
			"connector_density >0.025 → 0.35"),
		rowSignal(model.SignalFormalPhrase, float64(f.AIPhraseCount), s.aiPhrases(f), 0.25,
			fmt.Sprintf("Formal AI phrases: %d", f.AIPhraseCount),
			"ai_phrase_count >1 → 0.25"),
		rowSignal(model.SignalSentenceLen, f.AvgSentenceLength, s.sentenceLength(f), 0.20,
			fmt.Sprintf("Average sentence length: %.1f words", f.AvgSentenceLength),
			"22 <= avg_sentence_length <= 32 → 0.20"),
		rowSignal(model.SignalVocabulary, f.UniqueWordRatio, s.vocabulary(f), 0.15,
			fmt.Sprintf("Unique word ratio: %.2f", f.UniqueWordRatio),
			"unique_word_ratio <0.7 → 0.15"),
	}
}
