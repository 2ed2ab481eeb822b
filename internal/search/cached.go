package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/authentica/internal/cache"
)

// CachedProvider memoizes successful search responses
type CachedProvider struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
}

// NewCachedProvider wraps provider with a response cache.
// A nil cache returns the provider unchanged.
func NewCachedProvider(provider Provider, c cache.Cache, ttl time.Duration) Provider {
	if c == nil || provider == nil {
		return provider
	}
	return &CachedProvider{provider: provider, cache: c, ttl: ttl}
}

// Name returns the wrapped provider name
func (p *CachedProvider) Name() string {
	return p.provider.Name()
}

// Search returns a cached response when present, otherwise delegates and caches the result.
// Failures are never cached.
func (p *CachedProvider) Search(ctx context.Context, req Request) ([]Result, error) {
	key := requestKey(p.provider.Name(), req)

	var results []Result
	if cache.GetJSON(p.cache, key, &results) {
		return results, nil
	}

	results, err := p.provider.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	_ = cache.SetJSON(p.cache, key, results, p.ttl)
	return results, nil
}

func requestKey(provider string, req Request) string {
	domains := append([]string(nil), req.IncludeDomains...)
	sort.Strings(domains)
	return cache.Key("search", provider, req.Query, strings.Join(domains, ","),
		strconv.Itoa(req.MaxResults), req.Depth)
}
