package model

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Label is the ground-truth origin of a document, when known
type Label string

const (
	LabelUnknown Label = ""
	LabelHuman   Label = "human_written"
	LabelMachine Label = "ai_generated"
)

// ParseLabel maps a dataset label column to a Label.
// "1", "true", "ai", "machine" mean machine-generated; "0", "false", "human" mean human.
func ParseLabel(raw string) Label {
	switch raw {
	case "1", "true", "True", "TRUE", "ai", "machine", string(LabelMachine):
		return LabelMachine
	case "0", "false", "False", "FALSE", "human", string(LabelHuman):
		return LabelHuman
	default:
		return LabelUnknown
	}
}

// Document is a text stored in the corpus. Title and Text never change once created.
type Document struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Label    Label    `json:"label,omitempty"`
	Source   string   `json:"source,omitempty"` // Dataset or ingestion origin
	Domain   string   `json:"domain,omitempty"` // Subject domain (e.g., "covid19_research")
	Keywords []string `json:"keywords,omitempty"`
	Patterns []string `json:"patterns,omitempty"` // Pattern tags such as "high_connectors"

	Derived *Snapshot `json:"derived,omitempty"` // Last computed detection snapshot
}

// Snapshot is a copy of derived attributes written back onto a document
type Snapshot struct {
	Features          FeatureSet `json:"features"`
	AIScore           float64    `json:"ai_likelihood_score"`
	Strategy          string     `json:"strategy"`
	PlagiarismScore   float64    `json:"plagiarism_score"`
	PlagiarismMatches int        `json:"plagiarism_matches"`
	PlagiarismChecked bool       `json:"plagiarism_checked"`
	EmbeddingIndex    string     `json:"embedding_index,omitempty"`
	EmbeddingDims     int        `json:"embedding_dims,omitempty"`
	RunID             string     `json:"run_id,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DocumentID derives the stable id from the title and the first 50 runes of the text.
func DocumentID(title, text string) string {
	prefix := []rune(text)
	if len(prefix) > 50 {
		prefix = prefix[:50]
	}
	sum := md5.Sum([]byte(title + string(prefix)))
	return "doc_" + hex.EncodeToString(sum[:])[:12]
}

// NewDocument builds a document with its content-derived id
func NewDocument(title, text string, label Label) Document {
	return Document{
		ID:    DocumentID(title, text),
		Title: title,
		Text:  text,
		Label: label,
	}
}
