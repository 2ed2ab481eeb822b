package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/authentica/internal/model"
)

const documentColumns = `id, title, text, label, source, domain, keywords, patterns, derived`

// UpsertDocument inserts a document or refreshes its metadata.
// Title and text are never overwritten once a document exists.
func (s *Store) UpsertDocument(ctx context.Context, doc model.Document) error {
	if doc.ID == "" {
		doc.ID = model.DocumentID(doc.Title, doc.Text)
	}

	keywords, err := json.Marshal(nonNil(doc.Keywords))
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}
	patterns, err := json.Marshal(nonNil(doc.Patterns))
	if err != nil {
		return fmt.Errorf("marshalling patterns: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, text, label, source, domain, keywords, patterns, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = CASE WHEN excluded.label != '' THEN excluded.label ELSE documents.label END,
			source = CASE WHEN excluded.source != '' THEN excluded.source ELSE documents.source END,
			domain = CASE WHEN excluded.domain != '' THEN excluded.domain ELSE documents.domain END,
			keywords = excluded.keywords,
			patterns = excluded.patterns,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Text, string(doc.Label), doc.Source, doc.Domain,
		string(keywords), string(patterns), now, now)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by id
func (s *Store) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	return doc, err
}

// ListDocuments returns up to limit documents ordered by id. A limit <= 0 returns all.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]model.Document, error) {
	return s.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id LIMIT ?`, sqlLimit(limit))
}

// PendingEnrichment returns up to limit documents that have no content embedding in index
func (s *Store) PendingEnrichment(ctx context.Context, index string, limit int) ([]model.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+` FROM documents d
		WHERE NOT EXISTS (
			SELECT 1 FROM embeddings e
			WHERE e.doc_id = d.id AND e.vector_index = ? AND e.kind = ?
		)
		ORDER BY d.created_at, d.id
		LIMIT ?
	`, index, KindContent, sqlLimit(limit))
}

// CountDocuments returns the number of stored documents
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// SaveDerived writes a detection snapshot onto an existing document
func (s *Store) SaveDerived(ctx context.Context, id string, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET derived = ?, ai_score = ?, updated_at = ? WHERE id = ?
	`, string(data), snap.AIScore, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// SaveEmbedding stores a document vector in the named index, replacing any previous one
func (s *Store) SaveEmbedding(ctx context.Context, id, index, kind, embedModel string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for %s", id)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (doc_id, vector_index, kind, model, dims, vector, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id, vector_index, kind) DO UPDATE SET
			model = excluded.model,
			dims = excluded.dims,
			vector = excluded.vector,
			updated_at = excluded.updated_at
	`, id, index, kind, embedModel, len(vector), float32SliceToBytes(vector), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// HasEmbedding reports whether a document already has a vector of kind in index
func (s *Store) HasEmbedding(ctx context.Context, id, index, kind string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM embeddings WHERE doc_id = ? AND vector_index = ? AND kind = ?
	`, id, index, kind).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking embedding: %w", err)
	}
	return n > 0, nil
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row scanner) (*model.Document, error) {
	var doc model.Document
	var label, keywords, patterns string
	var derived sql.NullString

	if err := row.Scan(&doc.ID, &doc.Title, &doc.Text, &label, &doc.Source, &doc.Domain,
		&keywords, &patterns, &derived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Label = model.Label(label)

	if err := json.Unmarshal([]byte(keywords), &doc.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshaling keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(patterns), &doc.Patterns); err != nil {
		return nil, fmt.Errorf("unmarshaling patterns: %w", err)
	}
	if derived.Valid && derived.String != "" {
		var snap model.Snapshot
		if err := json.Unmarshal([]byte(derived.String), &snap); err != nil {
			return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
		}
		doc.Derived = &snap
	}
	return &doc, nil
}

// sqlLimit maps a non-positive limit to SQLite's "no limit"
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
