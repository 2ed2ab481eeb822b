package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/authentica/internal/cache"
	"github.com/ppiankov/authentica/internal/model"
)

func newTestClient(t *testing.T, baseURL string) *TavilyClient {
	t.Helper()
	client, err := NewTavilyClient(model.SearchConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		MaxResults: 5,
		Depth:      "basic",
		Timeout:    5 * time.Second,
	}, model.HTTPConfig{UserAgent: "authentica-test"})
	if err != nil {
		t.Fatalf("NewTavilyClient: %v", err)
	}
	return client
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := searchSleepFunc
	searchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { searchSleepFunc = orig })
}

func TestTavilyClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "authentica-test" {
			t.Errorf("Expected user agent header, got %q", ua)
		}

		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}
		if req.APIKey != "test-key" {
			t.Errorf("Expected api key, got %q", req.APIKey)
		}
		if req.Query != `"viral load measurements"` {
			t.Errorf("Unexpected query %q", req.Query)
		}
		if req.SearchDepth != "basic" || req.MaxResults != 5 {
			t.Errorf("Unexpected depth/max: %s %d", req.SearchDepth, req.MaxResults)
		}
		if len(req.IncludeDomains) != 2 || req.IncludeDomains[0] != "arxiv.org" {
			t.Errorf("Unexpected domains %v", req.IncludeDomains)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"query":"q","results":[
			{"url":"https://arxiv.org/abs/1","title":"Paper <i>one</i>","content":"<p>Viral   load</p> measurements","score":0.9}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	results, err := client.Search(context.Background(), Request{
		Query:          ExactPhrase("viral load measurements"),
		IncludeDomains: []string{"arxiv.org", "biorxiv.org"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Paper one" {
		t.Errorf("Expected cleaned title, got %q", results[0].Title)
	}
	if results[0].Content != "Viral load measurements" {
		t.Errorf("Expected cleaned content, got %q", results[0].Content)
	}
}

func TestTavilyClient_RetriesTransientFailure(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	results, err := newTestClient(t, server.URL).Search(context.Background(), Request{Query: "q"})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestTavilyClient_PermanentFailure(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":{"error":"Unauthorized: missing or invalid API key."}}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Search(context.Background(), Request{Query: "q"})
	if !errors.Is(err, model.ErrExternalService) {
		t.Fatalf("Expected ErrExternalService, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected wrapped 401 StatusError, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt for non-retryable status, got %d", attempts.Load())
	}
}

func TestTavilyClient_AllRetriesExhausted(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).Search(context.Background(), Request{Query: "q"}); err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if attempts.Load() != searchMaxRetries {
		t.Errorf("Expected %d attempts, got %d", searchMaxRetries, attempts.Load())
	}
}

func TestNewTavilyClient_RequiresKey(t *testing.T) {
	if _, err := NewTavilyClient(model.SearchConfig{}, model.HTTPConfig{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestIsRetryableSearchError(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{&StatusError{Code: 503}, true},
		{&StatusError{Code: 500}, true},
		{&StatusError{Code: 429}, true},
		{&StatusError{Code: 404}, false},
		{&StatusError{Code: 401}, false},
		{fmt.Errorf("request failed: dial tcp: connection refused"), true},
		{fmt.Errorf("request failed: read: connection reset by peer"), true},
		{fmt.Errorf("request failed: context deadline exceeded (Client.Timeout exceeded)"), true},
		{fmt.Errorf("decode response: unexpected EOF"), false},
	}

	for _, tt := range tests {
		if got := isRetryableSearchError(tt.err); got != tt.retryable {
			t.Errorf("isRetryableSearchError(%v) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
}

func TestInDomains(t *testing.T) {
	domains := []string{"pubmed.ncbi.nlm.nih.gov", "arxiv.org"}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://arxiv.org/abs/2101.00001", true},
		{"https://www.arxiv.org/abs/2101.00001", true},
		{"https://export.arxiv.org/abs/1", true},
		{"https://pubmed.ncbi.nlm.nih.gov/123/", true},
		{"https://ncbi.nlm.nih.gov/123/", false},
		{"https://notarxiv.org/abs/1", false},
		{"https://example.com/arxiv.org", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := InDomains(tt.url, domains); got != tt.want {
			t.Errorf("InDomains(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(model.SearchConfig{Provider: ""}, model.HTTPConfig{})
	if err != nil || p != nil {
		t.Errorf("Expected disabled provider, got %v %v", p, err)
	}

	p, err = NewProvider(model.SearchConfig{Provider: "tavily", APIKey: "k"}, model.HTTPConfig{})
	if err != nil || p == nil || p.Name() != "tavily" {
		t.Errorf("Expected tavily provider, got %v %v", p, err)
	}

	if _, err := NewProvider(model.SearchConfig{Provider: "bing"}, model.HTTPConfig{}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

type countingProvider struct {
	calls atomic.Int32
	fail  bool
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Search(ctx context.Context, req Request) ([]Result, error) {
	p.calls.Add(1)
	if p.fail {
		return nil, errors.New("boom")
	}
	return []Result{{URL: "https://arxiv.org/abs/1", Content: req.Query}}, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	p := NewCachedProvider(inner, c, time.Minute)

	req := Request{Query: "q", IncludeDomains: []string{"b.org", "a.org"}, MaxResults: 5}
	for i := 0; i < 3; i++ {
		results, err := p.Search(context.Background(), req)
		if err != nil || len(results) != 1 || results[0].Content != "q" {
			t.Fatalf("Unexpected response %v %v", results, err)
		}
	}
	if inner.calls.Load() != 1 {
		t.Errorf("Expected 1 upstream call, got %d", inner.calls.Load())
	}

	// Domain order does not change the cache key
	reordered := req
	reordered.IncludeDomains = []string{"a.org", "b.org"}
	if _, err := p.Search(context.Background(), reordered); err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("Expected cache hit for reordered domains, got %d calls", inner.calls.Load())
	}

	failing := &countingProvider{fail: true}
	fp := NewCachedProvider(failing, c, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := fp.Search(context.Background(), Request{Query: "x"}); err == nil {
			t.Fatal("Expected error")
		}
	}
	if failing.calls.Load() != 2 {
		t.Errorf("Expected failures not to be cached, got %d calls", failing.calls.Load())
	}

	if NewCachedProvider(inner, nil, 0) != Provider(inner) {
		t.Error("Expected nil cache to return the provider unchanged")
	}
}
