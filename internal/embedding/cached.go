package embedding

import (
	"context"
	"time"

	"github.com/ppiankov/authentica/internal/cache"
	"github.com/ppiankov/authentica/internal/logger"
)

// CachedProvider memoizes embeddings by provider, model, and prepared text
type CachedProvider struct {
	Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps p with a cache. A nil cache or provider returns p unchanged.
func NewCachedProvider(p Provider, c cache.Cache, ttl time.Duration) Provider {
	if p == nil || c == nil {
		return p
	}
	return &CachedProvider{Provider: p, cache: c, ttl: ttl}
}

// Embed returns a cached vector when present, otherwise embeds and stores the result
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key("embedding", c.Name(), c.Model(), Prepare(text))

	var vector []float32
	if cache.GetJSON(c.cache, key, &vector) && len(vector) == c.Dimensions() {
		return vector, nil
	}

	vector, err := c.Provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(c.cache, key, vector, c.ttl); err != nil {
		logger.Debug("Failed to cache embedding: %v", err)
	}
	return vector, nil
}
