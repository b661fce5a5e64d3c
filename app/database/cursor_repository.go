package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLCursorRepository persists resumable pagination tokens
type SQLCursorRepository struct {
	db *DB
}

// NewCursorRepository creates a new cursor repository
func NewCursorRepository(db *DB) *SQLCursorRepository {
	return &SQLCursorRepository{db: db}
}

// Get returns the saved token for a key, or empty string when no token is
// saved (absent row and cleared token are equivalent).
func (r *SQLCursorRepository) Get(key string) (string, error) {
	var value sql.NullString
	err := r.db.QueryRow("SELECT value FROM search_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cursor: %w", err)
	}
	return value.String, nil
}

// Set saves or replaces the token for a key
func (r *SQLCursorRepository) Set(key, token string) error {
	_, err := r.db.Exec(`
		INSERT INTO search_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	return nil
}

// Clear nulls out the token for a key, keeping the row as a marker of the
// last completed crawl.
func (r *SQLCursorRepository) Clear(key string) error {
	_, err := r.db.Exec(`
		UPDATE search_state SET value = NULL, updated_at = ? WHERE key = ?
	`, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("failed to clear cursor: %w", err)
	}
	return nil
}
