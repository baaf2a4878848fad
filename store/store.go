// Package store persists the small amount of per-install client state: the
// anonymous session identifier and the recent search history. It is a SQLite
// file next to the binary, playing the role a browser's local storage would.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	session_id TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS recent_searches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	searched_at TEXT NOT NULL
);
`

// maxRecentSearches bounds the history kept per install.
const maxRecentSearches = 10

// Store wraps the SQLite file holding client-side state.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path and ensures the schema exists.
// A corrupt file is discarded and recreated rather than surfaced as an error;
// losing the session id only means a fresh anonymous session.
func Open(path string) (*Store, error) {
	s, err := open(path)
	if err == nil {
		return s, nil
	}

	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("failed to reset store: %w", err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionID returns the stored anonymous session identifier, minting and
// persisting a new one on first use.
func (s *Store) SessionID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT session_id FROM session WHERE id = 1`).Scan(&id)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to read session id: %w", err)
	}

	id = uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO session (id, session_id, created_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET session_id = excluded.session_id`,
		id, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to persist session id: %w", err)
	}
	return id, nil
}

// Reset clears all stored state. The next SessionID call starts a new session.
func (s *Store) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM recent_searches`); err != nil {
		return fmt.Errorf("failed to reset search history: %w", err)
	}
	return nil
}

// AddRecentSearch records a search query, deduplicating against the existing
// history and trimming it to the bounded size. Blank queries are ignored.
func (s *Store) AddRecentSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recent_searches WHERE query = ?`, query); err != nil {
		return fmt.Errorf("failed to dedupe search history: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO recent_searches (query, searched_at) VALUES (?, ?)`,
		query, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM recent_searches WHERE id NOT IN (
			SELECT id FROM recent_searches ORDER BY id DESC LIMIT ?
		)`, maxRecentSearches,
	); err != nil {
		return fmt.Errorf("failed to trim search history: %w", err)
	}

	return tx.Commit()
}

// RecentSearches returns the stored queries, most recent first.
func (s *Store) RecentSearches() ([]string, error) {
	rows, err := s.db.Query(`SELECT query FROM recent_searches ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan search history: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
