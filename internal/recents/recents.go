// Package recents is a small SQLite-backed index of recently opened
// session folders, adapted from the teacher's application datastore
// pattern. It is a peripheral convenience for the CLI/TUI picker: nothing
// in the core's correctness or invariants (spec.md §8) depends on it.
package recents

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recently opened session folder.
type Entry struct {
	Path       string
	LastOpened time.Time
	OpenCount  int
}

// Store wraps a SQLite database tracking recently opened session folders.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the recents database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recents db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS recent_sessions (
			path        TEXT PRIMARY KEY,
			last_opened TEXT NOT NULL,
			open_count  INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("create recent_sessions table: %w", err)
	}
	return nil
}

// Touch records that path was just opened, incrementing its open count.
func (s *Store) Touch(path string) error {
	_, err := s.db.Exec(`
		INSERT INTO recent_sessions (path, last_opened, open_count)
		VALUES (?, datetime('now'), 1)
		ON CONFLICT(path) DO UPDATE SET
			last_opened = datetime('now'),
			open_count = open_count + 1
	`, path)
	if err != nil {
		return fmt.Errorf("touch recent session %s: %w", path, err)
	}
	return nil
}

// Forget removes path from the recents index.
func (s *Store) Forget(path string) error {
	if _, err := s.db.Exec(`DELETE FROM recent_sessions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forget recent session %s: %w", path, err)
	}
	return nil
}

// List returns the most recently opened sessions, newest first, capped at limit.
func (s *Store) List(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT path, last_opened, open_count
		FROM recent_sessions
		ORDER BY last_opened DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var lastOpened string
		if err := rows.Scan(&e.Path, &lastOpened, &e.OpenCount); err != nil {
			return nil, fmt.Errorf("scan recent session row: %w", err)
		}
		e.LastOpened, err = parseSQLiteDatetime(lastOpened)
		if err != nil {
			return nil, fmt.Errorf("parse last_opened for %s: %w", e.Path, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent sessions: %w", err)
	}
	return out, nil
}

// sqliteDatetimeFormats mirrors the handful of textual formats SQLite's
// datetime('now') and CURRENT_TIMESTAMP may produce across drivers.
var sqliteDatetimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
}

func parseSQLiteDatetime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range sqliteDatetimeFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime format %q: %w", raw, lastErr)
}
