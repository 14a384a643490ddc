package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// Session storage keys. The engagement core reads and clears exactly these
// two keys; it never issues their values.
const (
	SessionTokenKey = "auth_token"
	SessionUserKey  = "auth_user"
)

// SessionRepository is the persisted client key-value store backing the
// identity gate. Values are opaque strings (serialized token and user
// records).
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the value stored under key. Returns ("", nil) when the key
// is absent: a missing key is guest state, not an error.
func (r *SessionRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SessionRepository) Set(key, value string) error {
	query := `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

// Delete removes a single key. Deleting an absent key is not an error.
func (r *SessionRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM session WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}
	return nil
}

// Clear removes both engagement session keys in one transaction, repairing
// any partially written state.
func (r *SessionRepository) Clear() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range []string{SessionTokenKey, SessionUserKey} {
		if _, err := tx.Exec("DELETE FROM session WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to clear session key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session clear: %w", err)
	}
	return nil
}
