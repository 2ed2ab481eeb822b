package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/authentica/internal/embedding"
	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/plagiarism"
	"github.com/ppiankov/authentica/internal/store"
)

// Enrichment defaults
const (
	DefaultEnrichLimit     = 500
	DefaultCheckpointEvery = 50
	DefaultCheckpointPause = time.Second
)

// checkpointSleepFunc pauses at every checkpoint (injectable for tests)
var checkpointSleepFunc = time.Sleep

// DocumentStore persists documents and their derived attributes
type DocumentStore interface {
	UpsertDocument(ctx context.Context, doc model.Document) error
	PendingEnrichment(ctx context.Context, index string, limit int) ([]model.Document, error)
	HasEmbedding(ctx context.Context, id, index, kind string) (bool, error)
	SaveDerived(ctx context.Context, id string, snap model.Snapshot) error
	SaveEmbedding(ctx context.Context, id, index, kind, embedModel string, vector []float32) error
	SaveMatches(ctx context.Context, docID string, matches []model.PlagiarismMatch) error
}

// EnrichOptions controls an Enricher
type EnrichOptions struct {
	CheckpointEvery int
	Pause           time.Duration
	Plagiarism      bool // Run plagiarism search per document
	Force           bool // Reprocess documents that already have a content embedding
}

// EnrichStats summarizes one enrichment run
type EnrichStats struct {
	RunID           string        `json:"run_id"`
	Total           int           `json:"total"`
	Processed       int           `json:"processed"`
	AlreadyEnriched int           `json:"already_enriched"`
	Failed          int           `json:"failed"`
	Matches         int           `json:"matches"`
	Cancelled       bool          `json:"cancelled,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Enricher computes and stores derived attributes and embeddings for a corpus
type Enricher struct {
	detector *Detector
	store    DocumentStore
	embedder embedding.Provider
	index    string
	opts     EnrichOptions
}

// NewEnricher creates an enricher. detector supplies features, evidence, and scoring.
func NewEnricher(detector *Detector, st DocumentStore, embedder embedding.Provider, opts EnrichOptions) *Enricher {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = DefaultCheckpointEvery
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	return &Enricher{
		detector: detector,
		store:    st,
		embedder: embedder,
		index:    embedding.IndexFor(embedder),
		opts:     opts,
	}
}

// EnrichStore enriches up to limit stored documents that have no content embedding in the embedder's index
func (e *Enricher) EnrichStore(ctx context.Context, limit int) (EnrichStats, error) {
	if limit <= 0 {
		limit = DefaultEnrichLimit
	}

	docs, err := e.store.PendingEnrichment(ctx, e.index, limit)
	if err != nil {
		return EnrichStats{}, fmt.Errorf("load pending documents: %w", err)
	}
	return e.Enrich(ctx, docs), nil
}

// Enrich processes docs in order. A failing document is logged and skipped;
// the loop stops before the next document once ctx is done.
func (e *Enricher) Enrich(ctx context.Context, docs []model.Document) EnrichStats {
	start := time.Now()
	stats := EnrichStats{RunID: uuid.NewString(), Total: len(docs)}

	if e.embedder == nil {
		logger.Error("Enrichment requires an embedding provider")
		stats.Failed = len(docs)
		return stats
	}

	logger.Section(fmt.Sprintf("Enrichment run %s", stats.RunID))
	logger.Info("Documents: %d, index: %s, plagiarism: %v", len(docs), e.index, e.opts.Plagiarism)

	for _, doc := range docs {
		if ctx.Err() != nil {
			stats.Cancelled = true
			logger.Warn("Enrichment cancelled after %d documents: %v", stats.Processed, ctx.Err())
			break
		}

		if doc.ID == "" {
			doc.ID = model.DocumentID(doc.Title, doc.Text)
		}

		if !e.opts.Force {
			done, err := e.store.HasEmbedding(ctx, doc.ID, e.index, store.KindContent)
			if err != nil {
				logger.Warn("Skipping %s: %v", doc.ID, err)
				stats.Failed++
				continue
			}
			if done {
				stats.AlreadyEnriched++
				continue
			}
		}

		matches, err := e.enrichOne(ctx, doc, stats.RunID)
		if err != nil {
			logger.Warn("Skipping %s: %v", doc.ID, err)
			stats.Failed++
			continue
		}
		stats.Processed++
		stats.Matches += matches

		if stats.Processed%e.opts.CheckpointEvery == 0 {
			logger.Info("Processed %d/%d documents", stats.Processed, len(docs))
			if e.opts.Pause > 0 {
				checkpointSleepFunc(e.opts.Pause)
			}
		}
	}

	stats.Duration = time.Since(start)
	logger.Info("Enrichment complete: %d processed, %d already enriched, %d failed",
		stats.Processed, stats.AlreadyEnriched, stats.Failed)
	return stats
}

// enrichOne stores the derived attributes of one document and returns its match count
func (e *Enricher) enrichOne(ctx context.Context, doc model.Document, runID string) (int, error) {
	d := e.detector

	features, err := d.extractor.ExtractChecked(doc.Text)
	if err != nil {
		return 0, fmt.Errorf("extract features: %w", err)
	}

	contentVec, err := e.embedder.Embed(ctx, DetectionContext(doc, features))
	if err != nil {
		return 0, fmt.Errorf("content embedding: %w", err)
	}

	var report *model.PlagiarismReport
	if e.opts.Plagiarism {
		r, warning := d.collect(ctx, doc.Text, doc.Title)
		if warning != "" {
			logger.Warn("%s: %s", doc.ID, warning)
		}
		report = &r
	}

	var plagiarismVec []float32
	if report != nil {
		plagiarismVec, err = e.embedder.Embed(ctx, PlagiarismContext(doc.Title, doc.Text, *report))
		if err != nil {
			logger.Warn("%s: plagiarism embedding failed: %v", doc.ID, err)
		}
	}

	result := d.assemble(doc.Title, features, report, nil)
	snap := result.Snapshot()
	snap.RunID = runID
	snap.EmbeddingIndex = e.index
	snap.EmbeddingDims = len(contentVec)

	if err := e.store.UpsertDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	matches := 0
	if report != nil && len(report.Matches) > 0 {
		unique := plagiarism.Dedupe(report.Matches)
		if err := e.store.SaveMatches(ctx, doc.ID, unique); err != nil {
			return 0, fmt.Errorf("save matches: %w", err)
		}
		matches = len(unique)
	}

	if plagiarismVec != nil {
		if err := e.store.SaveEmbedding(ctx, doc.ID, e.index, store.KindPlagiarism, e.embedder.Model(), plagiarismVec); err != nil {
			return 0, fmt.Errorf("save plagiarism embedding: %w", err)
		}
	}

	if err := e.store.SaveDerived(ctx, doc.ID, snap); err != nil {
		return 0, fmt.Errorf("save derived attributes: %w", err)
	}

	// Written last: a content embedding marks the document as enriched
	if err := e.store.SaveEmbedding(ctx, doc.ID, e.index, store.KindContent, e.embedder.Model(), contentVec); err != nil {
		return 0, fmt.Errorf("save content embedding: %w", err)
	}

	logger.Debug("%s: ai_score=%.3f matches=%d", doc.ID, snap.AIScore, matches)
	return matches, nil
}
