package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/authentica/internal/embedding"
	"github.com/ppiankov/authentica/internal/extract"
	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/score"
)

// Retrieval defaults
const (
	DefaultNeighbors = 5
	DefaultMinScore  = 0.8
)

// NeighborIndex finds stored documents similar to a query vector
type NeighborIndex interface {
	NearestNeighbors(ctx context.Context, vector []float32, k int, minScore float64) ([]model.Neighbor, error)
}

// EvidenceCollector gathers plagiarism evidence for a text
type EvidenceCollector interface {
	Collect(ctx context.Context, text, title string) model.PlagiarismReport
}

// SourceVerifier checks the accessibility of matched sources
type SourceVerifier interface {
	Verify(ctx context.Context, matches []model.PlagiarismMatch) []model.VerificationResult
}

// AuthorityAnnotator assigns authority tiers to matches
type AuthorityAnnotator interface {
	Annotate(matches []model.PlagiarismMatch)
}

// Detector aggregates features, similarity retrieval, plagiarism evidence, and scoring
type Detector struct {
	extractor *extract.FeatureExtractor
	strategy  score.Strategy
	embedder  embedding.Provider
	index     NeighborIndex
	collector EvidenceCollector
	authority AuthorityAnnotator
	verifier  SourceVerifier
	k         int
	minScore  float64
	now       func() time.Time
}

// DetectorOption configures a Detector
type DetectorOption func(*Detector)

// WithRetrieval enables nearest-neighbor lookups through embedder and index.
// k <= 0 keeps DefaultNeighbors and a negative minScore keeps DefaultMinScore;
// a minScore of 0 returns every neighbor with positive similarity.
func WithRetrieval(embedder embedding.Provider, index NeighborIndex, k int, minScore float64) DetectorOption {
	return func(d *Detector) {
		d.embedder = embedder
		d.index = index
		if k > 0 {
			d.k = k
		}
		if minScore >= 0 {
			d.minScore = minScore
		}
	}
}

// WithCollector sets the plagiarism evidence collector used by Analyze
func WithCollector(c EvidenceCollector) DetectorOption {
	return func(d *Detector) {
		d.collector = c
	}
}

// WithAuthority sets the classifier that tiers plagiarism matches
func WithAuthority(a AuthorityAnnotator) DetectorOption {
	return func(d *Detector) {
		d.authority = a
	}
}

// WithVerifier enables accessibility checks of plagiarism matches
func WithVerifier(v SourceVerifier) DetectorOption {
	return func(d *Detector) {
		d.verifier = v
	}
}

// WithClock overrides the detection timestamp source
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector creates a detector scoring with strategy
func NewDetector(extractor *extract.FeatureExtractor, strategy score.Strategy, opts ...DetectorOption) *Detector {
	d := &Detector{
		extractor: extractor,
		strategy:  strategy,
		k:         DefaultNeighbors,
		minScore:  DefaultMinScore,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if d.extractor == nil {
		d.extractor = extract.NewFeatureExtractor()
	}
	if d.strategy == nil {
		d.strategy = score.NewReduced()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithStrategy returns a copy of the detector that scores with s
func (d *Detector) WithStrategy(s score.Strategy) *Detector {
	c := *d
	c.strategy = s
	return &c
}

// Strategy returns the scoring strategy in use
func (d *Detector) Strategy() score.Strategy {
	return d.strategy
}

// Detect scores a text without plagiarism search.
// A text shorter than the minimum length returns a zero-score result together with ErrInsufficientInput.
func (d *Detector) Detect(ctx context.Context, text, title string) (*model.DetectionResult, error) {
	return d.run(ctx, text, title, false)
}

// Analyze is Detect plus plagiarism evidence collection
func (d *Detector) Analyze(ctx context.Context, text, title string) (*model.DetectionResult, error) {
	return d.run(ctx, text, title, true)
}

func (d *Detector) run(ctx context.Context, text, title string, plagiarism bool) (*model.DetectionResult, error) {
	features, featErr := d.extractor.ExtractChecked(text)

	var warnings []string
	if featErr != nil {
		warnings = append(warnings, fmt.Sprintf("scoring skipped: %v", featErr))
	}

	neighbors, err := d.neighbors(ctx, strings.TrimSpace(title+" "+text))
	if err != nil {
		logger.Warn("Similarity search failed: %v", err)
		warnings = append(warnings, fmt.Sprintf("similarity search unavailable: %v", err))
	}

	var report *model.PlagiarismReport
	if plagiarism {
		r, warning := d.collect(ctx, text, title)
		report = &r
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	result := d.assemble(title, features, report, neighbors)
	result.Warnings = append(result.Warnings, warnings...)

	if report != nil && d.verifier != nil && len(report.Matches) > 0 {
		result.Verification = d.verifier.Verify(ctx, report.Matches)
	}

	if featErr != nil {
		return result, featErr
	}
	return result, nil
}

// neighbors embeds query and searches the index. Without retrieval configured it returns an empty list.
func (d *Detector) neighbors(ctx context.Context, query string) ([]model.Neighbor, error) {
	neighbors := []model.Neighbor{}
	if d.embedder == nil || d.index == nil {
		return neighbors, nil
	}

	vector, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return neighbors, fmt.Errorf("embed query: %w", err)
	}

	found, err := d.index.NearestNeighbors(ctx, vector, d.k, d.minScore)
	if err != nil {
		return neighbors, fmt.Errorf("query index: %w", err)
	}
	if found != nil {
		neighbors = found
	}
	return neighbors, nil
}

// collect runs the evidence collector and annotates authority.
// The returned warning is empty when the search completed.
func (d *Detector) collect(ctx context.Context, text, title string) (model.PlagiarismReport, string) {
	if d.collector == nil {
		return model.PlagiarismReport{Matches: []model.PlagiarismMatch{}}, "plagiarism search not configured"
	}

	report := d.collector.Collect(ctx, text, title)
	if report.Matches == nil {
		report.Matches = []model.PlagiarismMatch{}
	}
	if d.authority != nil {
		d.authority.Annotate(report.Matches)
	}

	if report.Errors > 0 && report.SearchesPerformed == 0 {
		return report, fmt.Sprintf("plagiarism search failed for all %d phrases", report.Errors)
	}
	return report, ""
}

// assemble builds the result from computed parts. An empty feature set scores 0 with no reasoning.
func (d *Detector) assemble(title string, features model.FeatureSet, report *model.PlagiarismReport, neighbors []model.Neighbor) *model.DetectionResult {
	if neighbors == nil {
		neighbors = []model.Neighbor{}
	}

	result := &model.DetectionResult{
		Title:      title,
		Strategy:   d.strategy.Name(),
		Features:   features,
		Neighbors:  neighbors,
		Reasoning:  []string{},
		DetectedAt: d.now(),
	}

	if !features.Empty {
		result.AIProbability = d.strategy.Score(features)
		result.Reasoning = d.strategy.Reasoning(features, result.AIProbability)
		result.Signals = d.strategy.Signals(features)
	}
	result.Prediction = score.Label(result.AIProbability)
	result.Confidence = score.Confidence(result.AIProbability)

	if report != nil {
		result.Plagiarism = report
		result.PlagiarismScore = math.Min(report.Score, 1)
		result.Signals = append(result.Signals, plagiarismSignal(*report, result.PlagiarismScore))
	}

	return result
}

func plagiarismSignal(report model.PlagiarismReport, bounded float64) model.Signal {
	severity := model.SeverityInfo
	switch {
	case bounded >= 0.5:
		severity = model.SeverityCritical
	case report.MatchesFound > 0:
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalPlagiarism,
		Severity:    severity,
		Description: fmt.Sprintf("%d overlapping sources across %d searches", report.MatchesFound, report.SearchesPerformed),
		Data: map[string]interface{}{
			"found_matches":  report.MatchesFound,
			"total_searches": report.SearchesPerformed,
			"score":          bounded,
			"formula":        "min(found_matches / total_searches, 1)",
		},
	}
}

// DetectBatch runs Detect over items sequentially. Texts shorter than
// model.MinBatchTextLength are skipped and metadata is echoed on each result.
func (d *Detector) DetectBatch(ctx context.Context, items []model.BatchItem) []model.BatchOutcome {
	outcomes := make([]model.BatchOutcome, 0, len(items))
	for i, item := range items {
		outcome := model.BatchOutcome{Index: i, ID: item.ID}

		if err := ctx.Err(); err != nil {
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}

		if len([]rune(strings.TrimSpace(item.Text))) < model.MinBatchTextLength {
			outcome.Skipped = true
			outcomes = append(outcomes, outcome)
			continue
		}

		result, err := d.Detect(ctx, item.Text, item.Title)
		if err != nil && !errors.Is(err, model.ErrInsufficientInput) {
			outcome.Error = err.Error()
		}
		if result != nil && len(item.Metadata) > 0 {
			result.Metadata = item.Metadata
		}
		outcome.Result = result
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
