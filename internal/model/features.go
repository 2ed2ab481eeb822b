package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Optional is a statistic that may be absent.
// An absent value is distinct from a present zero and serializes as null.
type Optional struct {
	Value   float64
	Present bool
}

// Some returns a present Optional
func Some(v float64) Optional {
	return Optional{Value: v, Present: true}
}

// Get returns the value and whether it is present
func (o Optional) Get() (float64, bool) {
	return o.Value, o.Present
}

// MarshalJSON writes null for an absent value
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(o.Value, 'g', -1, 64)), nil
}

// UnmarshalJSON reads null as absent
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// FeatureSet holds the lexical and syntactic statistics of one text
type FeatureSet struct {
	// Empty marks a text too short to analyze. Callers must not score it.
	Empty bool `json:"empty,omitempty"`

	WordCount          int     `json:"word_count"`
	SentenceCount      int     `json:"sentence_count"`
	AvgSentenceLength  float64 `json:"avg_sentence_length"`
	AvgWordLength      float64 `json:"avg_word_length"`
	UniqueWordRatio    float64 `json:"unique_word_ratio"`
	PunctuationDensity float64 `json:"punctuation_density"`

	ConnectorDensity   float64 `json:"connector_density"`
	HedgingDensity     float64 `json:"hedging_density"`
	IntensifierDensity float64 `json:"intensifier_density"`
	AIPhraseCount      int     `json:"ai_phrase_count"`

	FleschReadingEase    float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade   float64 `json:"flesch_kincaid_grade"`
	AutomatedReadability float64 `json:"automated_readability"`

	DomainTerms int `json:"covid_terms"` // Hits from the configured domain vocabulary

	// Present only when a part-of-speech tagger ran
	NounRatio     Optional `json:"noun_ratio"`
	VerbRatio     Optional `json:"verb_ratio"`
	AdjRatio      Optional `json:"adj_ratio"`
	AdvRatio      Optional `json:"adv_ratio"`
	EntityCount   Optional `json:"entity_count"`
	EntityDensity Optional `json:"entity_density"`
}

// Ratios returns every ratio-valued field that is present, keyed by name
func (f FeatureSet) Ratios() map[string]float64 {
	ratios := map[string]float64{
		"unique_word_ratio":   f.UniqueWordRatio,
		"punctuation_density": f.PunctuationDensity,
		"connector_density":   f.ConnectorDensity,
		"hedging_density":     f.HedgingDensity,
		"intensifier_density": f.IntensifierDensity,
	}
	for name, opt := range map[string]Optional{
		"noun_ratio":     f.NounRatio,
		"verb_ratio":     f.VerbRatio,
		"adj_ratio":      f.AdjRatio,
		"adv_ratio":      f.AdvRatio,
		"entity_density": f.EntityDensity,
	} {
		if v, ok := opt.Get(); ok {
			ratios[name] = v
		}
	}
	return ratios
}

// HasPartOfSpeech reports whether tagger-derived fields are present
func (f FeatureSet) HasPartOfSpeech() bool {
	return f.NounRatio.Present
}
