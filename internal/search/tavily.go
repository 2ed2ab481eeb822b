package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/authentica/internal/extract"
	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/util"
)

const (
	searchMaxRetries = 3
	maxResponseBytes = 4 << 20
)

// searchSleepFunc is the sleep function used between retries (injectable for tests)
var searchSleepFunc = time.Sleep

// TavilyClient implements Provider against the Tavily search API
type TavilyClient struct {
	apiKey     string
	baseURL    string
	userAgent  string
	depth      string
	maxResults int
	httpClient *http.Client
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		URL     string  `json:"url"`
		Title   string  `json:"title"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

type tavilyError struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// StatusError is returned when the search API answers with a non-2xx status
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// NewTavilyClient creates a new Tavily client
func NewTavilyClient(cfg model.SearchConfig, httpCfg model.HTTPConfig) (*TavilyClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Tavily API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	depth := cfg.Depth
	if depth == "" {
		depth = "basic"
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &TavilyClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  httpCfg.UserAgent,
		depth:      depth,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
	}, nil
}

// Name returns the provider name
func (c *TavilyClient) Name() string {
	return "tavily"
}

// Search runs one query, retrying transient failures with exponential backoff
func (c *TavilyClient) Search(ctx context.Context, req Request) ([]Result, error) {
	var lastErr error
	for attempt := 0; attempt < searchMaxRetries; attempt++ {
		results, err := c.search(ctx, req)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if !isRetryableSearchError(err) || ctx.Err() != nil {
			break
		}
		if attempt < searchMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			searchSleepFunc(backoff)
		}
	}
	return nil, fmt.Errorf("tavily search: %w: %w", model.ErrExternalService, lastErr)
}

func (c *TavilyClient) search(ctx context.Context, req Request) ([]Result, error) {
	depth := req.Depth
	if depth == "" {
		depth = c.depth
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = c.maxResults
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:         c.apiKey,
		Query:          req.Query,
		SearchDepth:    depth,
		MaxResults:     maxResults,
		IncludeDomains: req.IncludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr tavilyError
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Detail.Error != "" {
			msg = apiErr.Detail.Error
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: msg}
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, Result{
			URL:     r.URL,
			Title:   extract.VisibleText(r.Title),
			Content: extract.VisibleText(r.Content),
			Score:   r.Score,
		})
	}
	return results, nil
}

// isRetryableSearchError returns true for rate limits, server errors, and transient network failures
func isRetryableSearchError(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
