package model

import "time"

// Prediction labels emitted by detection
const (
	PredictionAI    = "AI Generated"
	PredictionHuman = "Human Written"
)

// DecisionThreshold is the AI-probability cutoff above which a text is labelled AI Generated
const DecisionThreshold = 0.5

// DetectionResult is the externally visible outcome of scoring one text
type DetectionResult struct {
	Title         string  `json:"title,omitempty"`
	AIProbability float64 `json:"ai_probability"` // Bounded [0,1]
	Prediction    string  `json:"prediction"`     // "AI Generated" or "Human Written"
	Confidence    float64 `json:"confidence"`     // |p - 0.5| * 2
	Strategy      string  `json:"strategy"`       // Scoring strategy that produced the probability

	Features  FeatureSet `json:"features"`
	Neighbors []Neighbor `json:"similar_abstracts"`

	Plagiarism      *PlagiarismReport    `json:"plagiarism,omitempty"` // nil when plagiarism search was not run
	PlagiarismScore float64              `json:"plagiarism_score"`     // Bounded [0,1]
	Verification    []VerificationResult `json:"verification,omitempty"`

	Reasoning []string `json:"reasoning"`
	Signals   []Signal `json:"signals,omitempty"`
	Warnings  []string `json:"warnings,omitempty"` // Signals that degraded to defaults

	Metadata   map[string]string `json:"metadata,omitempty"`
	DetectedAt time.Time         `json:"detected_at"`
}

// Snapshot copies the derived attributes of the result for storage on a document
func (r *DetectionResult) Snapshot() Snapshot {
	snap := Snapshot{
		Features:  r.Features,
		AIScore:   r.AIProbability,
		Strategy:  r.Strategy,
		UpdatedAt: r.DetectedAt,
	}
	if r.Plagiarism != nil {
		snap.PlagiarismScore = r.PlagiarismScore
		snap.PlagiarismMatches = len(r.Plagiarism.Matches)
		snap.PlagiarismChecked = true
	}
	return snap
}

// Neighbor is a semantically similar stored document
type Neighbor struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Score   float64  `json:"score"` // Cosine similarity
	Label   Label    `json:"generated,omitempty"`
	AIScore *float64 `json:"ai_score,omitempty"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Transparent scoring data (formulas, inputs)
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalConnectors   SignalType = "connector_density"
	SignalHedging      SignalType = "hedging_density"
	SignalFormalPhrase SignalType = "ai_phrase_count"
	SignalSentenceLen  SignalType = "avg_sentence_length"
	SignalReadability  SignalType = "readability"
	SignalVocabulary   SignalType = "unique_word_ratio"
	SignalPlagiarism   SignalType = "plagiarism"
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LabelStats summarizes stored AI scores for one ground-truth label
type LabelStats struct {
	Label      Label   `json:"actual"`
	Count      int     `json:"count"`
	AvgAIScore float64 `json:"avg_ai_score"`
	MinAIScore float64 `json:"min_score"`
	MaxAIScore float64 `json:"max_score"`
}

// FeatureAverages compares mean feature values for one ground-truth label
type FeatureAverages struct {
	Label             Label   `json:"label"`
	Count             int     `json:"count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	ConnectorDensity  float64 `json:"connector_density"`
	HedgingDensity    float64 `json:"hedging_density"`
	UniqueWordRatio   float64 `json:"unique_word_ratio"`
	FleschReadingEase float64 `json:"flesch_reading_ease"`
	AIPhraseCount     float64 `json:"ai_phrase_count"`
}
