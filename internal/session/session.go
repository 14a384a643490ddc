// package session implements the identity gate over persisted client storage.
//
// The gate owns two storage keys: a bearer token record and a serialized
// user record. It never issues either value; login flows outside this core
// write them and the gate only reads, validates, and clears them. Any
// malformed or partial state is repaired by clearing both keys, demoting
// the session to guest.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/oauth2"
)

// Identity is a validated session identity: a non-empty user id paired
// with a usable bearer token.
type Identity struct {
	UserID      string
	DisplayName string
	Token       *oauth2.Token
}

// UserRecord is the serialized user record held in session storage.
type UserRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// Store is the persisted key-value storage the gate reads. Implemented by
// [repositories.SessionRepository].
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Clear() error
}

// Gate validates and exposes the current session identity.
//
// Callers must consult Current immediately before each mutation rather
// than caching the result: an unauthorized response from the counter
// service invalidates the identity asynchronously via Invalidate.
type Gate struct {
	store  Store
	logger *log.Logger
}

// NewGate creates a Gate over the given storage.
func NewGate(store Store, logger *log.Logger) *Gate {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Gate{store: store, logger: logger}
}

// Current returns the validated session identity, or nil for guest state.
//
// Missing keys, unparsable records, an empty user id, or an expired token
// all collapse to nil; corrupted state is cleared from storage so the next
// read starts clean.
func (g *Gate) Current() *Identity {
	tokenRaw, err := g.store.Get(repositories.SessionTokenKey)
	if err != nil {
		g.logger.Warn("session storage read failed", "err", err)
		return nil
	}
	userRaw, err := g.store.Get(repositories.SessionUserKey)
	if err != nil {
		g.logger.Warn("session storage read failed", "err", err)
		return nil
	}

	if tokenRaw == "" || userRaw == "" {
		if tokenRaw != "" || userRaw != "" {
			// One key without the other is corrupted state, not guest state.
			g.repair("partial session data")
		}
		return nil
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenRaw), &token); err != nil {
		g.repair("unparsable token record")
		return nil
	}

	var record UserRecord
	if err := json.Unmarshal([]byte(userRaw), &record); err != nil {
		g.repair("unparsable user record")
		return nil
	}

	if record.ID == "" {
		g.repair("user record has empty id")
		return nil
	}

	if !token.Valid() {
		g.repair("token expired or empty")
		return nil
	}

	return &Identity{
		UserID:      record.ID,
		DisplayName: record.DisplayName,
		Token:       &token,
	}
}

// Save persists a token and user record pair. It does not validate the
// credential against the counter service; that happens on first use.
func (g *Gate) Save(record UserRecord, token *oauth2.Token) error {
	if record.ID == "" {
		return fmt.Errorf("%w: user id is required", shared.ErrInvalidInput)
	}
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", shared.ErrInvalidInput)
	}

	tokenData, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}
	userData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	if err := g.store.Set(repositories.SessionTokenKey, string(tokenData)); err != nil {
		return err
	}
	if err := g.store.Set(repositories.SessionUserKey, string(userData)); err != nil {
		// Roll back the half-written pair so Current never sees it.
		g.repair("user record write failed")
		return err
	}

	return nil
}

// Invalidate clears the persisted identity. Called on logout and on any
// unauthorized response from the counter service; subsequent Current calls
// report guest state without a restart.
func (g *Gate) Invalidate() {
	if err := g.store.Clear(); err != nil {
		g.logger.Error("failed to clear session storage", "err", err)
		return
	}
	g.logger.Info("session identity cleared")
}

// repair clears corrupted session storage and logs why.
func (g *Gate) repair(reason string) {
	g.logger.Warn("repairing session storage", "reason", reason)
	if err := g.store.Clear(); err != nil {
		g.logger.Error("failed to clear session storage", "err", err)
	}
}
