package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/authentica/internal/model"
)

// Provider defines the interface for restricted web-search providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Search runs one query scoped to the request's domain whitelist
	Search(ctx context.Context, req Request) ([]Result, error)
}

// Request is one search query
type Request struct {
	Query          string
	IncludeDomains []string
	MaxResults     int
	Depth          string // "basic" or "advanced"
}

// Result is one search hit
type Result struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// ExactPhrase quotes a phrase for exact-match search
func ExactPhrase(phrase string) string {
	return `"` + strings.ReplaceAll(phrase, `"`, "") + `"`
}

// InDomains reports whether the URL's host equals or is a subdomain of one of domains
func InDomains(rawURL string, domains []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// NewProvider creates a search provider based on configuration.
// An empty provider name disables search and returns nil.
func NewProvider(cfg model.SearchConfig, httpCfg model.HTTPConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "tavily":
		return NewTavilyClient(cfg, httpCfg)

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: tavily)", cfg.Provider)
	}
}
