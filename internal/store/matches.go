package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/authentica/internal/model"
)

// SaveMatches records plagiarism matches and links them to a document.
// Match records are keyed by their URL-derived id, so rediscovering a source
// only adds an edge.
func (s *Store) SaveMatches(ctx context.Context, docID string, matches []model.PlagiarismMatch) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, m := range matches {
		if m.ID == "" {
			m.ID = model.MatchID(m.URL)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO matches (id, url, title, snippet, authority, first_seen)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				authority = CASE WHEN excluded.authority != 0 THEN excluded.authority ELSE matches.authority END
		`, m.ID, m.URL, m.Title, m.Snippet, int(m.Authority), now); err != nil {
			return fmt.Errorf("saving match: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_matches (doc_id, match_id, phrase, similarity)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(doc_id, match_id) DO UPDATE SET
				phrase = excluded.phrase,
				similarity = excluded.similarity
		`, docID, m.ID, m.Phrase, m.Similarity); err != nil {
			return fmt.Errorf("linking match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Matches returns the plagiarism matches linked to a document
func (s *Store) Matches(ctx context.Context, docID string) ([]model.PlagiarismMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, dm.phrase, m.url, m.title, m.snippet, dm.similarity, m.authority
		FROM document_matches dm
		JOIN matches m ON m.id = dm.match_id
		WHERE dm.doc_id = ?
		ORDER BY dm.similarity DESC, m.id
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []model.PlagiarismMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m model.PlagiarismMatch
		var authority int
		if err := rows.Scan(&m.ID, &m.Phrase, &m.URL, &m.Title, &m.Snippet, &m.Similarity, &authority); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.Authority = model.AuthorityTier(authority)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}

// SetMatchAuthority updates the authority tier of a stored match
func (s *Store) SetMatchAuthority(ctx context.Context, matchID string, tier model.AuthorityTier) error {
	res, err := s.db.ExecContext(ctx, "UPDATE matches SET authority = ? WHERE id = ?", int(tier), matchID)
	if err != nil {
		return fmt.Errorf("updating match authority: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("match %s: %w", matchID, model.ErrNotFound)
	}
	return nil
}
