// Package store provides the SQLite storage layer for Study Map.
//
// All data lives in a single SQLite database file:
// - topics and skills are unique-name lookup tables
// - entries hold one logged study session each
// - entry_skills bridges entries to skills
// - connections and blindspots hold AI-discovered annotations
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
	"studymap/pkg/logger"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "study_map.db"

// legacyTimeLayout matches rows written by sqlite's datetime('now') default.
const legacyTimeLayout = "2006-01-02 15:04:05"

// Store wraps the SQLite database handle.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens the database at path, creating it and running migrations if
// needed. Pass ":memory:" for in-memory databases (testing).
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultDBPath
	}

	// Create parent directory for non-memory databases
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each database/sql connection to :memory: would get its own empty
	// database, so keep the pool at a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, logger: logger.Get()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats returns row counts for every table the dashboard reports on.
func (s *Store) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	counts := []struct {
		table string
		dest  *int64
	}{
		{"entries", &stats.Entries},
		{"topics", &stats.Topics},
		{"skills", &stats.Skills},
		{"connections", &stats.Connections},
		{"blindspots", &stats.Blindspots},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, apperrors.NewStoreFailure("count "+c.table, err)
		}
	}
	return stats, nil
}

// now returns the timestamp value written to created_at columns.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseTimestamp reads a created_at column value. Falls back to the
// datetime('now') layout for rows written by older versions.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(legacyTimeLayout, s); err == nil {
		return t
	}
	return time.Time{}
}
