package store

import (
	"context"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
)

// GetOrCreateSkill returns the id of the skill with the given name,
// inserting it first if it does not exist. Names are matched exactly;
// callers are expected to trim whitespace beforehand.
func (s *Store) GetOrCreateSkill(ctx context.Context, name string) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO skills (name, created_at) VALUES (?, ?)",
		name, now(),
	); err != nil {
		return 0, apperrors.NewStoreFailure("insert skill", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM skills WHERE name = ?", name,
	).Scan(&id); err != nil {
		return 0, apperrors.NewStoreFailure("lookup skill", err)
	}
	return id, nil
}

// ListSkills returns all skills in alphabetical order.
func (s *Store) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM skills ORDER BY name")
	if err != nil {
		return nil, apperrors.NewStoreFailure("list skills", err)
	}
	defer rows.Close()

	skills := make([]domain.Skill, 0)
	for rows.Next() {
		var (
			sk      domain.Skill
			created string
		)
		if err := rows.Scan(&sk.ID, &sk.Name, &created); err != nil {
			return nil, apperrors.NewStoreFailure("scan skill", err)
		}
		sk.CreatedAt = parseTimestamp(created)
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailure("list skills", err)
	}
	return skills, nil
}
