package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
)

// AddBlindspot records a suggested next area to explore for an entry.
func (s *Store) AddBlindspot(ctx context.Context, entryID int64, suggestion string, category, whyImportant, howItHelps *string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blindspots (entry_id, suggestion, category, why_important, how_it_helps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entryID, suggestion, category, whyImportant, howItHelps, now(),
	)
	if err != nil {
		return apperrors.NewStoreFailure("insert blindspot", err)
	}

	s.logger.Debug("Added blindspot",
		zap.Int64("entry_id", entryID),
		zap.String("suggestion", suggestion))
	return nil
}

// ListBlindspots returns all blindspots with their entry's topic title,
// newest first.
func (s *Store) ListBlindspots(ctx context.Context) ([]domain.Blindspot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.entry_id, b.suggestion, b.category, b.why_important,
		       b.how_it_helps, b.created_at, t.title AS topic_title
		FROM blindspots b
		JOIN entries e ON e.id = b.entry_id
		JOIN topics t ON t.id = e.topic_id
		ORDER BY b.created_at DESC, b.id DESC`)
	if err != nil {
		return nil, apperrors.NewStoreFailure("list blindspots", err)
	}
	defer rows.Close()

	spots := make([]domain.Blindspot, 0)
	for rows.Next() {
		var (
			b        domain.Blindspot
			category sql.NullString
			why      sql.NullString
			how      sql.NullString
			created  string
		)
		if err := rows.Scan(&b.ID, &b.EntryID, &b.Suggestion, &category, &why,
			&how, &created, &b.TopicTitle); err != nil {
			return nil, apperrors.NewStoreFailure("scan blindspot", err)
		}
		if category.Valid {
			v := category.String
			b.Category = &v
		}
		if why.Valid {
			v := why.String
			b.WhyImportant = &v
		}
		if how.Valid {
			v := how.String
			b.HowItHelps = &v
		}
		b.CreatedAt = parseTimestamp(created)
		spots = append(spots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailure("list blindspots", err)
	}
	return spots, nil
}
