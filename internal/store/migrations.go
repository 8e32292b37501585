package store

import (
	"fmt"
)

// migrate creates all tables if they don't exist and brings databases
// written by older versions up to the current schema.
func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL UNIQUE,
			created_at  TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL UNIQUE,
			created_at  TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			topic_id            INTEGER NOT NULL REFERENCES topics(id),
			summary             TEXT NOT NULL,
			enhanced_summary    TEXT,
			ai_classification   TEXT,
			created_at          TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS entry_skills (
			entry_id    INTEGER NOT NULL REFERENCES entries(id),
			skill_id    INTEGER NOT NULL REFERENCES skills(id),
			PRIMARY KEY (entry_id, skill_id)
		)`,
		`CREATE TABLE IF NOT EXISTS connections (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			source_entry_id     INTEGER NOT NULL REFERENCES entries(id),
			target_entry_id     INTEGER NOT NULL REFERENCES entries(id),
			relationship        TEXT NOT NULL,
			strength            REAL NOT NULL DEFAULT 0.5,
			explanation         TEXT,
			created_at          TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS blindspots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id      INTEGER NOT NULL REFERENCES entries(id),
			suggestion    TEXT NOT NULL,
			category      TEXT,
			why_important TEXT,
			how_it_helps  TEXT,
			created_at    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_topic ON entries(topic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_skills_skill ON entry_skills(skill_id)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_source ON connections(source_entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_target ON connections(target_entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blindspots_entry ON blindspots(entry_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	// Databases created before these columns existed need them added.
	// CREATE TABLE IF NOT EXISTS won't touch existing tables.
	legacy := []struct {
		table  string
		column string
	}{
		{"connections", "explanation"},
		{"blindspots", "why_important"},
		{"blindspots", "how_it_helps"},
		{"entries", "enhanced_summary"},
	}
	for _, m := range legacy {
		if err := s.migrateColumn(m.table, m.column); err != nil {
			return fmt.Errorf("migrating %s.%s: %w", m.table, m.column, err)
		}
	}

	return nil
}

// migrateColumn adds a nullable TEXT column if the table lacks it.
func (s *Store) migrateColumn(table, column string) error {
	var count int
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = '%s'", table, column),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for column: %w", err)
	}
	if count > 0 {
		return nil // Already migrated
	}

	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", table, column))
	return err
}
