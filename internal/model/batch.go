package model

// MinBatchTextLength is the shortest text, in characters, scored in batch detection
const MinBatchTextLength = 50

// BatchItem is one text submitted for batch detection
type BatchItem struct {
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title,omitempty"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// BatchOutcome is the result of one batch item, in submission order
type BatchOutcome struct {
	Index   int              `json:"index"`
	ID      string           `json:"id,omitempty"`
	Result  *DetectionResult `json:"result,omitempty"`
	Skipped bool             `json:"skipped,omitempty"` // Text shorter than MinBatchTextLength
	Error   string           `json:"error,omitempty"`
}
