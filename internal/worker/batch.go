package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
)

// Detector scores a single text
type Detector interface {
	Detect(ctx context.Context, text, title string) (*model.DetectionResult, error)
}

// DetectJob runs ad-hoc detection for one batch item
type DetectJob struct {
	Index    int
	Item     model.BatchItem
	Detector Detector
	Limiter  *Limiter
	RateKey  string
}

// Execute executes the detection job
func (j *DetectJob) Execute(ctx context.Context) Result {
	outcome := &DetectOutcome{BatchOutcome: model.BatchOutcome{Index: j.Index, ID: j.Item.ID}}

	if len([]rune(strings.TrimSpace(j.Item.Text))) < model.MinBatchTextLength {
		outcome.Skipped = true
		return outcome
	}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.RateKey); err != nil {
			outcome.err = fmt.Errorf("rate limit: %w", err)
			outcome.Error = outcome.err.Error()
			return outcome
		}
	}

	result, err := j.Detector.Detect(ctx, j.Item.Text, j.Item.Title)
	if result != nil && len(j.Item.Metadata) > 0 {
		if result.Metadata == nil {
			result.Metadata = make(map[string]string, len(j.Item.Metadata))
		}
		for k, v := range j.Item.Metadata {
			result.Metadata[k] = v
		}
	}
	outcome.Result = result
	if err != nil {
		outcome.err = err
		outcome.Error = err.Error()
	}
	return outcome
}

// DetectOutcome is the result of a detection job
type DetectOutcome struct {
	model.BatchOutcome
	err error
}

// GetError returns the detection error, if any
func (o *DetectOutcome) GetError() error {
	return o.err
}

// BatchProcessor runs ad-hoc detection over many texts concurrently
type BatchProcessor struct {
	detector    Detector
	concurrency int
	limiter     *Limiter
	rateKey     string
}

// NewBatchProcessor creates a batch processor. Every job waits on limiter
// under rateKey (typically the embedding provider host) before calling out.
func NewBatchProcessor(detector Detector, concurrency int, limiter *Limiter, rateKey string) *BatchProcessor {
	return &BatchProcessor{
		detector:    detector,
		concurrency: concurrency,
		limiter:     limiter,
		rateKey:     rateKey,
	}
}

// Process detects every item and returns outcomes in submission order
func (b *BatchProcessor) Process(ctx context.Context, items []model.BatchItem) []model.BatchOutcome {
	if len(items) == 0 {
		return []model.BatchOutcome{}
	}

	jobs := make([]Job, len(items))
	for i, item := range items {
		jobs[i] = &DetectJob{
			Index:    i,
			Item:     item,
			Detector: b.detector,
			Limiter:  b.limiter,
			RateKey:  b.rateKey,
		}
	}

	results := Run(ctx, b.concurrency, jobs)

	outcomes := make([]model.BatchOutcome, 0, len(results))
	failed := 0
	for _, r := range results {
		o := r.(*DetectOutcome)
		if o.err != nil {
			failed++
		}
		outcomes = append(outcomes, o.BatchOutcome)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	logger.Debug("Batch detection: %d items, %d completed, %d failed", len(items), len(outcomes), failed)
	return outcomes
}

// ProcessFile reads items from a JSON Lines file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]model.BatchOutcome, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	return b.Process(ctx, items), nil
}

// ReadItemsFromFile reads batch items from a file, one per line. A line is a JSON
// object ({"id","title","text","metadata"}) or plain text. Blank lines and
// "#" comments are skipped and identical texts are deduplicated.
func ReadItemsFromFile(filePath string) ([]model.BatchItem, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []model.BatchItem
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		item := model.BatchItem{Text: line}
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &item); err != nil {
				return nil, fmt.Errorf("line %d: %w: %w", lineNo, model.ErrMalformedRecord, err)
			}
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("line_%d", lineNo)
		}

		if !seen[item.Text] {
			seen[item.Text] = true
			items = append(items, item)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return items, nil
}
