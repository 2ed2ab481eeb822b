package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/authentica/internal/model"
)

// Strategy names
const (
	StrategyFull    = "full"
	StrategyReduced = "reduced"
)

// HumanReasoning is emitted when no rule fires
const HumanReasoning = "Features suggest human writing patterns"

// Reasoning lines shared by both strategies
const (
	reasonConnectors = "High usage of connecting words typical of AI writing"
	reasonAIPhrases  = "Multiple formal phrases commonly used by AI models"
	reasonSentence   = "Sentence length in typical AI range"
	reasonVocabulary = "Lower vocabulary diversity suggests AI generation"
	reasonHedging    = "Frequent hedging language typical of AI writing"
	reasonReadable   = "Uniformly high readability typical of AI writing"
)

// Strategy maps a feature set to a bounded AI-likelihood score with justifications
type Strategy interface {
	// Name identifies the strategy
	Name() string

	// Score returns a value in [0,1]. An empty feature set scores 0.
	Score(f model.FeatureSet) float64

	// Reasoning returns one justification per triggered rule, or a single human-writing statement
	Reasoning(f model.FeatureSet, score float64) []string

	// Signals returns one transparent signal per rule row
	Signals(f model.FeatureSet) []model.Signal
}

var strategies = map[string]Strategy{
	StrategyFull:    NewFull(),
	StrategyReduced: NewReduced(),
}

// Lookup returns the strategy registered under name
func Lookup(name string) (Strategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q (available: %s): %w", name, strings.Join(Names(), ", "), model.ErrUnknownStrategy)
	}
	return s, nil
}

// Names lists registered strategy names
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Label maps a score to its prediction label at the 0.5 cutoff
func Label(score float64) string {
	if score > model.DecisionThreshold {
		return model.PredictionAI
	}
	return model.PredictionHuman
}

// Confidence is the distance from the decision boundary scaled to [0,1]
func Confidence(score float64) float64 {
	return clamp(math.Abs(score-model.DecisionThreshold)*2, 0, 1)
}

// rowSignal builds the transparent signal for one rule row
func rowSignal(typ model.SignalType, value, contribution, top float64, description, formula string) model.Signal {
	severity := model.SeverityInfo
	switch {
	case contribution > 0 && contribution >= top:
		severity = model.SeverityCritical
	case contribution > 0:
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        typ,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"value":        value,
			"contribution": contribution,
			"formula":      formula,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
