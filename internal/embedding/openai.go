package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/util"
	"github.com/sashabaranov/go-openai"
)

const embedMaxRetries = 3

// embedSleepFunc is the sleep function used between retries (injectable for tests)
var embedSleepFunc = time.Sleep

// Model dimensions for OpenAI embedding models
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIProvider generates embeddings with the OpenAI embeddings API
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIProvider creates a new OpenAI embedding provider
func NewOpenAIProvider(cfg model.EmbeddingConfig, httpCfg model.HTTPConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = string(openai.SmallEmbedding3)
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		if dimensions, ok = modelDimensions[modelName]; !ok {
			dimensions = 1536
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      modelName,
		dimensions: dimensions,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the embedding model
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Dimensions returns the embedding length
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing
func (p *OpenAIProvider) Close() error {
	return nil
}

// Embed returns the embedding of the prepared text, retrying transient failures
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	input := Prepare(text)
	if input == "" {
		return nil, fmt.Errorf("embed empty text: %w", model.ErrInsufficientInput)
	}

	var lastErr error
	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		vector, err := p.embed(ctx, input)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if !isRetryableEmbedError(err) || ctx.Err() != nil {
			break
		}
		if attempt < embedMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			embedSleepFunc(backoff)
		}
	}
	return nil, fmt.Errorf("openai embedding: %w: %w", model.ErrExternalService, lastErr)
}

func (p *OpenAIProvider) embed(ctx context.Context, input string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{input},
		Model: openai.EmbeddingModel(p.model),
	}
	// Only text-embedding-3-* models accept a dimensions override
	if strings.HasPrefix(p.model, "text-embedding-3") {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vector := resp.Data[0].Embedding
	if len(vector) != p.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(vector), p.dimensions)
	}
	return vector, nil
}

// isRetryableEmbedError returns true for rate limits, server errors, and transient network failures
func isRetryableEmbedError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
