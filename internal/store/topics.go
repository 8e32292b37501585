package store

import (
	"context"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
)

// GetOrCreateTopic returns the id of the topic with the given title,
// inserting it first if it does not exist. INSERT OR IGNORE keeps the
// operation safe under concurrent requests for the same title.
func (s *Store) GetOrCreateTopic(ctx context.Context, title string) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO topics (title, created_at) VALUES (?, ?)",
		title, now(),
	); err != nil {
		return 0, apperrors.NewStoreFailure("insert topic", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM topics WHERE title = ?", title,
	).Scan(&id); err != nil {
		return 0, apperrors.NewStoreFailure("lookup topic", err)
	}
	return id, nil
}

// ListTopics returns all topics, newest first.
func (s *Store) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM topics ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.NewStoreFailure("list topics", err)
	}
	defer rows.Close()

	topics := make([]domain.Topic, 0)
	for rows.Next() {
		var (
			t       domain.Topic
			created string
		)
		if err := rows.Scan(&t.ID, &t.Title, &created); err != nil {
			return nil, apperrors.NewStoreFailure("scan topic", err)
		}
		t.CreatedAt = parseTimestamp(created)
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailure("list topics", err)
	}
	return topics, nil
}
