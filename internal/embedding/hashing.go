package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/ppiankov/authentica/internal/model"
)

// HashingDimensions is the vector length of the local feature-hashing embedder
const HashingDimensions = 384

// HashingProvider embeds text locally by hashing word unigrams and bigrams
// into a fixed-size signed vector. It needs no network access and is
// deterministic across runs.
type HashingProvider struct {
	dimensions int
}

// NewHashingProvider creates a feature-hashing provider with the given vector length
func NewHashingProvider(dimensions int) *HashingProvider {
	if dimensions <= 0 {
		dimensions = HashingDimensions
	}
	return &HashingProvider{dimensions: dimensions}
}

// Name returns the provider name
func (p *HashingProvider) Name() string {
	return "hashing"
}

// Model returns the embedding model identifier
func (p *HashingProvider) Model() string {
	return "feature-hash-v1"
}

// Dimensions returns the embedding length
func (p *HashingProvider) Dimensions() int {
	return p.dimensions
}

// Close is a no-op
func (p *HashingProvider) Close() error {
	return nil
}

// Embed returns the L2-normalized hashed feature vector of text
func (p *HashingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.FieldsFunc(strings.ToLower(Prepare(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil, fmt.Errorf("embed empty text: %w", model.ErrInsufficientInput)
	}

	acc := make([]float64, p.dimensions)
	for i, w := range words {
		p.add(acc, w, 1.0)
		if i > 0 {
			p.add(acc, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vector := make([]float32, p.dimensions)
	if norm == 0 {
		return vector, nil
	}
	for i, v := range acc {
		vector[i] = float32(v / norm)
	}
	return vector, nil
}

// add hashes a feature to a bucket; the top bit of the hash picks the sign
func (p *HashingProvider) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(p.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}
