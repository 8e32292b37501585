package store

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
)

// entrySelect joins each entry with its topic title and the comma-joined
// skill names. Callers append WHERE/GROUP BY/ORDER BY clauses.
const entrySelect = `
	SELECT e.id, e.topic_id, t.title AS topic_title, e.summary,
	       e.enhanced_summary, e.ai_classification, e.created_at,
	       GROUP_CONCAT(s.name, ', ') AS skills
	FROM entries e
	JOIN topics t ON t.id = e.topic_id
	LEFT JOIN entry_skills es ON es.entry_id = e.id
	LEFT JOIN skills s ON s.id = es.skill_id`

// CreateEntry inserts an entry and links it to the given skills in one
// transaction, so a failed link never leaves a half-written entry.
// Returns the new entry id.
func (s *Store) CreateEntry(ctx context.Context, topicID int64, summary string, skillIDs []int64, classification *domain.Classification) (int64, error) {
	blob, err := marshalClassification(classification)
	if err != nil {
		return 0, apperrors.NewStoreFailure("create entry", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewStoreFailure("create entry", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO entries (topic_id, summary, ai_classification, created_at) VALUES (?, ?, ?, ?)",
		topicID, summary, blob, now(),
	)
	if err != nil {
		return 0, apperrors.NewStoreFailure("insert entry", err)
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStoreFailure("insert entry", err)
	}

	for _, sid := range skillIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO entry_skills (entry_id, skill_id) VALUES (?, ?)",
			entryID, sid,
		); err != nil {
			return 0, apperrors.NewStoreFailure("link entry skill", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewStoreFailure("create entry", err)
	}

	s.logger.Debug("Created entry",
		zap.Int64("entry_id", entryID),
		zap.Int64("topic_id", topicID),
		zap.Int("skills", len(skillIDs)))
	return entryID, nil
}

// GetEntry returns a single entry with its topic title and skills.
func (s *Store) GetEntry(ctx context.Context, id int64) (*domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, entrySelect+" WHERE e.id = ? GROUP BY e.id", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewEntryNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewStoreFailure("get entry", err)
	}
	return &e, nil
}

// ListEntries returns all entries, newest first.
func (s *Store) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		entrySelect+" GROUP BY e.id ORDER BY e.created_at DESC, e.id DESC")
	if err != nil {
		return nil, apperrors.NewStoreFailure("list entries", err)
	}
	defer rows.Close()

	entries := make([]domain.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewStoreFailure("scan entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailure("list entries", err)
	}
	return entries, nil
}

// AttachEnhancedSummary stores the AI-rewritten summary for an entry.
func (s *Store) AttachEnhancedSummary(ctx context.Context, entryID int64, enhanced string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET enhanced_summary = ? WHERE id = ?", enhanced, entryID)
	if err != nil {
		return apperrors.NewStoreFailure("update enhanced summary", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreFailure("update enhanced summary", err)
	}
	if n == 0 {
		return apperrors.NewEntryNotFound(entryID)
	}
	return nil
}

// UpdateClassification replaces the stored classification for an entry.
func (s *Store) UpdateClassification(ctx context.Context, entryID int64, classification *domain.Classification) error {
	blob, err := marshalClassification(classification)
	if err != nil {
		return apperrors.NewStoreFailure("update classification", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET ai_classification = ? WHERE id = ?", blob, entryID)
	if err != nil {
		return apperrors.NewStoreFailure("update classification", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreFailure("update classification", err)
	}
	if n == 0 {
		return apperrors.NewEntryNotFound(entryID)
	}
	return nil
}

// UnclassifiedEntryIDs returns the ids of entries with no stored
// classification, oldest first.
func (s *Store) UnclassifiedEntryIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM entries WHERE ai_classification IS NULL OR ai_classification = '' ORDER BY id")
	if err != nil {
		return nil, apperrors.NewStoreFailure("list unclassified entries", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStoreFailure("scan entry id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailure("list unclassified entries", err)
	}
	return ids, nil
}

// scanEntry reads one row produced by entrySelect.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (domain.Entry, error) {
	var (
		e        domain.Entry
		enhanced sql.NullString
		blob     sql.NullString
		skills   sql.NullString
		created  string
	)
	if err := scanner.Scan(&e.ID, &e.TopicID, &e.TopicTitle, &e.Summary,
		&enhanced, &blob, &created, &skills); err != nil {
		return domain.Entry{}, err
	}
	if enhanced.Valid {
		v := enhanced.String
		e.EnhancedSummary = &v
	}
	e.Classification = unmarshalClassification(blob)
	e.CreatedAt = parseTimestamp(created)
	e.Skills = skills.String
	return e, nil
}
