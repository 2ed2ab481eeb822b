package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/authentica/internal/model"
)

// MaxInputChars is the longest text, in runes, sent to a provider
const MaxInputChars = 8000

// Vector index names
const (
	IndexPrimary = "primary" // Hosted provider embeddings
	IndexLocal   = "local"   // Statistical feature-hashing embeddings
)

// Provider defines the interface for embedding providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the embedding model identifier
	Model() string

	// Dimensions returns the vector length produced by Embed
	Dimensions() int

	// Embed returns the embedding of text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases provider resources
	Close() error
}

// Prepare collapses line breaks to spaces, trims, and truncates text to MaxInputChars runes
func Prepare(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(text)
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > MaxInputChars {
		runes = runes[:MaxInputChars]
	}
	return string(runes)
}

// IndexFor returns the vector index a provider's embeddings belong to
func IndexFor(p Provider) string {
	if p != nil && p.Name() == "hashing" {
		return IndexLocal
	}
	return IndexPrimary
}

// NewProvider creates an embedding provider based on configuration.
// An empty provider name disables embeddings and returns nil.
func NewProvider(cfg model.EmbeddingConfig, httpCfg model.HTTPConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg, httpCfg)

	case "hashing", "local":
		return NewHashingProvider(HashingDimensions), nil

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, hashing)", cfg.Provider)
	}
}
