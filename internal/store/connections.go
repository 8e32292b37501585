package store

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
)

// AddConnection records a relationship from one stored entry to another.
// Foreign keys reject ids that don't exist in entries; that case comes
// back as ErrInvalidConnectionReference so callers can tell a bad
// reference from a broken store.
func (s *Store) AddConnection(ctx context.Context, sourceID, targetID int64, relationship string, strength float64, explanation *string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connections (source_entry_id, target_entry_id, relationship, strength, explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sourceID, targetID, relationship, strength, explanation, now(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return apperrors.NewInvalidConnectionReference(targetID)
		}
		return apperrors.NewStoreFailure("insert connection", err)
	}

	s.logger.Debug("Added connection",
		zap.Int64("source", sourceID),
		zap.Int64("target", targetID),
		zap.String("relationship", relationship))
	return nil
}

// ListConnections returns all connections with the topic titles of both
// endpoints, in insertion order.
func (s *Store) ListConnections(ctx context.Context) ([]domain.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.source_entry_id, c.target_entry_id, c.relationship,
		       c.strength, c.explanation, c.created_at,
		       t1.title AS source_topic, t2.title AS target_topic
		FROM connections c
		JOIN entries e1 ON e1.id = c.source_entry_id
		JOIN entries e2 ON e2.id = c.target_entry_id
		JOIN topics t1 ON t1.id = e1.topic_id
		JOIN topics t2 ON t2.id = e2.topic_id
		ORDER BY c.id`)
	if err != nil {
		return nil, apperrors.NewStoreFailure("list connections", err)
	}
	defer rows.Close()

	conns := make([]domain.Connection, 0)
	for rows.Next() {
		var (
			c           domain.Connection
			explanation sql.NullString
			created     string
		)
		if err := rows.Scan(&c.ID, &c.SourceEntryID, &c.TargetEntryID, &c.Relationship,
			&c.Strength, &explanation, &created, &c.SourceTopic, &c.TargetTopic); err != nil {
			return nil, apperrors.NewStoreFailure("scan connection", err)
		}
		if explanation.Valid {
			v := explanation.String
			c.Explanation = &v
		}
		c.CreatedAt = parseTimestamp(created)
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailure("list connections", err)
	}
	return conns, nil
}
