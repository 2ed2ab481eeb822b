package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/authentica/internal/cache"
	"github.com/ppiankov/authentica/internal/embedding"
	"github.com/ppiankov/authentica/internal/extract"
	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/plagiarism"
	"github.com/ppiankov/authentica/internal/score"
	"github.com/ppiankov/authentica/internal/search"
	"github.com/ppiankov/authentica/internal/store"
	"github.com/ppiankov/authentica/internal/validate"
	"github.com/ppiankov/authentica/internal/worker"
)

// Pipeline wires the configured providers, store, detectors, and enricher
type Pipeline struct {
	Store    *store.Store
	Detector *Detector // Ad-hoc scoring strategy
	Enricher *Enricher

	embedder embedding.Provider
	search   search.Provider
	cache    cache.Cache
	config   *model.Config
}

// NewPipeline creates a pipeline from cfg. Unavailable optional providers
// are logged and disabled; the hosted embedder falls back to the local index.
func NewPipeline(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	adhoc, err := score.Lookup(cfg.Scoring.AdHocStrategy)
	if err != nil {
		return nil, fmt.Errorf("adhoc strategy: %w", err)
	}
	full, err := score.Lookup(cfg.Scoring.EnrichStrategy)
	if err != nil {
		return nil, fmt.Errorf("enrich strategy: %w", err)
	}

	c := cache.New(cfg.Cache)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	embedder = embedding.NewCachedProvider(embedder, c, cfg.Cache.DiskTTL)

	searcher, err := search.NewProvider(cfg.Search, cfg.HTTP)
	if err != nil {
		logger.Debug("Plagiarism search disabled: %v", err)
		searcher = nil
	}
	if searcher != nil {
		searcher = search.NewCachedProvider(searcher, c, cfg.Cache.DiskTTL)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		if embedder != nil {
			_ = embedder.Close()
		}
		return nil, err
	}

	opts := []DetectorOption{
		WithAuthority(validate.NewAuthorityClassifier(&cfg.Authority)),
	}
	if embedder != nil {
		index := st.VectorIndex(embedding.IndexFor(embedder), store.KindContent)
		opts = append(opts, WithRetrieval(embedder, index, cfg.Retrieval.Limit, cfg.Retrieval.MinScore))
	}
	if searcher != nil {
		opts = append(opts, WithCollector(plagiarism.NewCollector(searcher, cfg.Search)))
	}
	if cfg.Verify.Enabled {
		opts = append(opts, WithVerifier(validate.NewVerifier(cfg.Verify, &cfg.Authority, cfg.HTTP)))
	}

	detector := NewDetector(extract.NewFeatureExtractorFromConfig(cfg.Features), adhoc, opts...)

	p := &Pipeline{
		Store:    st,
		Detector: detector,
		embedder: embedder,
		search:   searcher,
		cache:    c,
		config:   cfg,
	}
	p.Enricher = NewEnricher(detector.WithStrategy(full), st, embedder, EnrichOptions{
		CheckpointEvery: cfg.Enrich.CheckpointEvery,
		Pause:           cfg.Enrich.Pause,
		Plagiarism:      cfg.Enrich.Plagiarism && searcher != nil,
		Force:           cfg.Enrich.Force,
	})

	return p, nil
}

// newEmbedder builds the configured embedding provider, falling back to the
// local hashing provider when the hosted one cannot be created
func newEmbedder(cfg *model.Config) (embedding.Provider, error) {
	p, err := embedding.NewProvider(cfg.Embedding, cfg.HTTP)
	if err == nil {
		return p, nil
	}
	if cfg.Embedding.APIKey == "" {
		logger.Warn("Hosted embeddings unavailable, using local index: %v", err)
		return embedding.NewHashingProvider(embedding.HashingDimensions), nil
	}
	return nil, fmt.Errorf("embedding provider: %w", err)
}

// DetectorFor returns the ad-hoc detector, switched to the named strategy when set
func (p *Pipeline) DetectorFor(strategy string) (*Detector, error) {
	if strategy == "" {
		return p.Detector, nil
	}
	s, err := score.Lookup(strategy)
	if err != nil {
		return nil, err
	}
	return p.Detector.WithStrategy(s), nil
}

// RateKey is the limiter key shared by parallel detections: the embedding host
func (p *Pipeline) RateKey() string {
	if p.config.Embedding.BaseURL != "" {
		return worker.HostKey(p.config.Embedding.BaseURL)
	}
	if p.EmbeddingIndex() == embedding.IndexPrimary {
		return "api.openai.com"
	}
	return "local"
}

// SearchEnabled reports whether a plagiarism search provider is configured
func (p *Pipeline) SearchEnabled() bool {
	return p.search != nil
}

// EmbeddingIndex names the vector index used for retrieval and enrichment
func (p *Pipeline) EmbeddingIndex() string {
	if p.embedder == nil {
		return ""
	}
	return embedding.IndexFor(p.embedder)
}

// CacheStats returns the provider cache counters. ok is false when caching is disabled.
func (p *Pipeline) CacheStats() (stats cache.Stats, ok bool) {
	r, ok := p.cache.(cache.StatsReporter)
	if !ok {
		return cache.Stats{}, false
	}
	return r.Stats(), true
}

// Close releases the store and provider resources
func (p *Pipeline) Close() error {
	var errs []error
	if p.embedder != nil {
		if err := p.embedder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close embedder: %w", err))
		}
	}
	if p.Store != nil {
		if err := p.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
