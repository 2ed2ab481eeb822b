package store

import (
	"context"
	"fmt"

	"github.com/ppiankov/authentica/internal/model"
)

// DetectionStats summarizes stored AI scores per ground-truth label.
// Unlabelled and unscored documents are excluded.
func (s *Store) DetectionStats(ctx context.Context) ([]model.LabelStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, COUNT(*), AVG(ai_score), MIN(ai_score), MAX(ai_score)
		FROM documents
		WHERE label != '' AND ai_score IS NOT NULL
		GROUP BY label
		ORDER BY label
	`)
	if err != nil {
		return nil, fmt.Errorf("querying detection stats: %w", err)
	}
	defer rows.Close()

	var stats []model.LabelStats
	for rows.Next() {
		var st model.LabelStats
		var label string
		if err := rows.Scan(&label, &st.Count, &st.AvgAIScore, &st.MinAIScore, &st.MaxAIScore); err != nil {
			return nil, fmt.Errorf("scanning detection stats: %w", err)
		}
		st.Label = model.Label(label)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating detection stats: %w", err)
	}
	return stats, nil
}

// FeatureComparison averages the stored features of each ground-truth label
func (s *Store) FeatureComparison(ctx context.Context) ([]model.FeatureAverages, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, COUNT(*),
			AVG(json_extract(derived, '$.features.avg_sentence_length')),
			AVG(json_extract(derived, '$.features.connector_density')),
			AVG(json_extract(derived, '$.features.hedging_density')),
			AVG(json_extract(derived, '$.features.unique_word_ratio')),
			AVG(json_extract(derived, '$.features.flesch_reading_ease')),
			AVG(json_extract(derived, '$.features.ai_phrase_count'))
		FROM documents
		WHERE label != '' AND derived IS NOT NULL
			AND COALESCE(json_extract(derived, '$.features.empty'), 0) = 0
		GROUP BY label
		ORDER BY label
	`)
	if err != nil {
		return nil, fmt.Errorf("querying feature comparison: %w", err)
	}
	defer rows.Close()

	var averages []model.FeatureAverages
	for rows.Next() {
		var fa model.FeatureAverages
		var label string
		if err := rows.Scan(&label, &fa.Count, &fa.AvgSentenceLength, &fa.ConnectorDensity,
			&fa.HedgingDensity, &fa.UniqueWordRatio, &fa.FleschReadingEase, &fa.AIPhraseCount); err != nil {
			return nil, fmt.Errorf("scanning feature comparison: %w", err)
		}
		fa.Label = model.Label(label)
		averages = append(averages, fa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feature comparison: %w", err)
	}
	return averages, nil
}
