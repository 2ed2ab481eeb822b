package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/authentica/internal/model"
)

// VectorIndex answers nearest-neighbor queries over one index and kind of stored embeddings
type VectorIndex struct {
	store *Store
	index string
	kind  string
}

// VectorIndex returns the index over vectors of kind stored under index
func (s *Store) VectorIndex(index, kind string) *VectorIndex {
	return &VectorIndex{store: s, index: index, kind: kind}
}

// NearestNeighbors scans every stored vector and returns up to k documents whose
// cosine similarity to vector exceeds minScore, best first. Vectors with a
// different dimension or zero norm are skipped.
func (v *VectorIndex) NearestNeighbors(ctx context.Context, vector []float32, k int, minScore float64) ([]model.Neighbor, error) {
	if len(vector) == 0 || k <= 0 {
		return []model.Neighbor{}, nil
	}
	queryNorm := norm(vector)
	if queryNorm == 0 {
		return []model.Neighbor{}, nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT e.doc_id, d.title, d.label, d.ai_score, e.vector
		FROM embeddings e
		JOIN documents d ON d.id = e.doc_id
		WHERE e.vector_index = ? AND e.kind = ? AND e.dims = ?
	`, v.index, v.kind, len(vector))
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w: %w", model.ErrExternalService, err)
	}
	defer rows.Close()

	neighbors := []model.Neighbor{}
	for rows.Next() {
		var n model.Neighbor
		var label string
		var aiScore sql.NullFloat64
		var blob []byte
		if err := rows.Scan(&n.ID, &n.Title, &label, &aiScore, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}

		stored := bytesToFloat32Slice(blob)
		if len(stored) != len(vector) {
			continue
		}
		score, ok := cosine(vector, stored, queryNorm)
		if !ok || score <= minScore {
			continue
		}

		n.Score = score
		n.Label = model.Label(label)
		if aiScore.Valid {
			s := aiScore.Float64
			n.AIScore = &s
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].ID < neighbors[j].ID
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns the cosine similarity of a and b given the precomputed norm of a.
// It reports false when b has zero norm.
func cosine(a, b []float32, normA float64) (float64, bool) {
	var dot, sumB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		sumB += float64(b[i]) * float64(b[i])
	}
	if sumB == 0 {
		return 0, false
	}
	return dot / (normA * math.Sqrt(sumB)), true
}
