package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/shared"
)

// CounterHandler implements the development counter service: the catalog
// read endpoints and the two mutation endpoints the client drives. Backed
// by sqlite ledger tables so duplicate detection and per-user attribution
// behave like the production service.
type CounterHandler struct {
	db     *sql.DB
	logger *log.Logger
	mux    *http.ServeMux
}

// NewCounterHandler creates a CounterHandler over the given database.
func NewCounterHandler(db *sql.DB, logger *log.Logger) *CounterHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	h := &CounterHandler{db: db, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /items", h.listItems)
	h.mux.HandleFunc("GET /items/{id}", h.getItem)
	h.mux.HandleFunc("POST /items/{id}/like", h.like)
	h.mux.HandleFunc("GET /tracks", h.listTracks)
	h.mux.HandleFunc("GET /tracks/{id}", h.getTrack)
	h.mux.HandleFunc("PUT /tracks/{id}/play", h.play)

	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *CounterHandler) Routes() []string {
	return []string{
		"GET /health",
		"GET /items",
		"GET /items/{id}",
		"POST /items/{id}/like",
		"GET /tracks",
		"GET /tracks/{id}",
		"PUT /tracks/{id}/play",
	}
}

// ServeHTTP dispatches to the handler's route table.
func (h *CounterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type itemPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	LikeCount int    `json:"like_count"`
	IsLiked   bool   `json:"is_liked"`
}

type trackPayload struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	AudioURL     string `json:"audio_url"`
	DurationSecs int    `json:"duration_secs"`
	PlayCount    int    `json:"play_count"`
	UserPlays    int    `json:"user_plays"`
	SpotifyURL   string `json:"spotify_url,omitempty"`
	AppleURL     string `json:"apple_url,omitempty"`
}

type likePayload struct {
	UserID *string `json:"user_id"`
	Liked  bool    `json:"liked"`
}

type playPayload struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func (h *CounterHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CounterHandler) listItems(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	rows, err := h.db.Query("SELECT id, title, like_count FROM items WHERE deleted_at IS NULL ORDER BY sequence")
	if err != nil {
		h.serverError(w, "failed to list items", err)
		return
	}
	defer rows.Close()

	items := []itemPayload{}
	for rows.Next() {
		var item itemPayload
		if err := rows.Scan(&item.ID, &item.Title, &item.LikeCount); err != nil {
			h.serverError(w, "failed to scan item", err)
			return
		}
		if userID != "" {
			item.IsLiked = h.hasLiked(item.ID, userID)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		h.serverError(w, "failed to list items", err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *CounterHandler) getItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := r.URL.Query().Get("user_id")

	item, err := h.fetchItem(id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to read item", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// like records the viewer's intended like state.
//
// Attributed likes are deduplicated through the likes ledger: repeating an
// action the ledger already reflects returns 409 so the client can treat it
// as idempotent success. Anonymous likes cannot be deduplicated; an
// anonymous unlike against a zero count still conflicts.
func (h *CounterHandler) like(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload likePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.fetchItem(id, "")
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to read item", err)
		return
	}

	if payload.UserID != nil {
		if payload.Liked {
			res, err := h.db.Exec("INSERT OR IGNORE INTO likes (item_id, user_id) VALUES (?, ?)", id, *payload.UserID)
			if err != nil {
				h.serverError(w, "failed to record like", err)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				writeError(w, http.StatusConflict, "already liked")
				return
			}
		} else {
			res, err := h.db.Exec("DELETE FROM likes WHERE item_id = ? AND user_id = ?", id, *payload.UserID)
			if err != nil {
				h.serverError(w, "failed to remove like", err)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				writeError(w, http.StatusConflict, "not liked")
				return
			}
		}
	} else if !payload.Liked && item.LikeCount == 0 {
		writeError(w, http.StatusConflict, "count already at zero")
		return
	}

	delta := 1
	if !payload.Liked {
		delta = -1
	}
	if _, err := h.db.Exec("UPDATE items SET like_count = MAX(like_count + ?, 0) WHERE id = ?", delta, id); err != nil {
		h.serverError(w, "failed to update like count", err)
		return
	}

	var count int
	if err := h.db.QueryRow("SELECT like_count FROM items WHERE id = ?", id).Scan(&count); err != nil {
		h.serverError(w, "failed to read like count", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"like_count": count,
		"is_liked":   payload.Liked,
	})
}

func (h *CounterHandler) listTracks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	rows, err := h.db.Query(`
		SELECT id, title, artist, audio_url, duration_secs, play_count, spotify_url, apple_url
		FROM tracks WHERE deleted_at IS NULL ORDER BY sequence
	`)
	if err != nil {
		h.serverError(w, "failed to list tracks", err)
		return
	}
	defer rows.Close()

	tracks := []trackPayload{}
	for rows.Next() {
		var track trackPayload
		if err := rows.Scan(&track.ID, &track.Title, &track.Artist, &track.AudioURL, &track.DurationSecs, &track.PlayCount, &track.SpotifyURL, &track.AppleURL); err != nil {
			h.serverError(w, "failed to scan track", err)
			return
		}
		if userID != "" {
			track.UserPlays = h.userPlays(track.ID, userID)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		h.serverError(w, "failed to list tracks", err)
		return
	}

	writeJSON(w, http.StatusOK, tracks)
}

func (h *CounterHandler) getTrack(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := r.URL.Query().Get("user_id")

	track, err := h.fetchTrack(id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to read track", err)
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// play records one attributed play. The bearer token must resolve to the
// user named in the body; anything else is 401 so the client demotes its
// session. The session id keys the plays ledger row, so a replay of an
// already-recorded session returns 409.
func (h *CounterHandler) play(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tokenUser, ok := h.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	var payload playPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" || payload.UserID != tokenUser {
		writeError(w, http.StatusUnauthorized, "token does not match user")
		return
	}
	if payload.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	var exists int
	err := h.db.QueryRow("SELECT 1 FROM tracks WHERE id = ? AND deleted_at IS NULL", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	if err != nil {
		h.serverError(w, "failed to read track", err)
		return
	}

	res, err := h.db.Exec("INSERT OR IGNORE INTO plays (id, track_id, user_id) VALUES (?, ?, ?)", payload.SessionID, id, payload.UserID)
	if err != nil {
		h.serverError(w, "failed to record play", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusConflict, "play already recorded")
		return
	}
	if _, err := h.db.Exec("UPDATE tracks SET play_count = play_count + 1 WHERE id = ?", id); err != nil {
		h.serverError(w, "failed to update play count", err)
		return
	}

	var count int
	if err := h.db.QueryRow("SELECT play_count FROM tracks WHERE id = ?", id).Scan(&count); err != nil {
		h.serverError(w, "failed to read play count", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"play_count": count,
		"user_plays": h.userPlays(id, payload.UserID),
	})
}

// authenticate resolves the bearer token against the token table.
func (h *CounterHandler) authenticate(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	var userID string
	if err := h.db.QueryRow("SELECT user_id FROM server_tokens WHERE token = ?", token).Scan(&userID); err != nil {
		return "", false
	}
	return userID, true
}

// RegisterToken associates a bearer token with a user for local development.
func (h *CounterHandler) RegisterToken(token, userID string) error {
	if token == "" || userID == "" {
		return fmt.Errorf("%w: token and user id are required", shared.ErrInvalidInput)
	}
	if _, err := h.db.Exec("INSERT OR REPLACE INTO server_tokens (token, user_id) VALUES (?, ?)", token, userID); err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

func (h *CounterHandler) fetchItem(id, userID string) (*itemPayload, error) {
	var item itemPayload
	err := h.db.QueryRow("SELECT id, title, like_count FROM items WHERE id = ? AND deleted_at IS NULL", id).Scan(&item.ID, &item.Title, &item.LikeCount)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		item.IsLiked = h.hasLiked(id, userID)
	}
	return &item, nil
}

func (h *CounterHandler) fetchTrack(id, userID string) (*trackPayload, error) {
	var track trackPayload
	err := h.db.QueryRow(`
		SELECT id, title, artist, audio_url, duration_secs, play_count, spotify_url, apple_url
		FROM tracks WHERE id = ? AND deleted_at IS NULL
	`, id).Scan(&track.ID, &track.Title, &track.Artist, &track.AudioURL, &track.DurationSecs, &track.PlayCount, &track.SpotifyURL, &track.AppleURL)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		track.UserPlays = h.userPlays(id, userID)
	}
	return &track, nil
}

func (h *CounterHandler) hasLiked(itemID, userID string) bool {
	var one int
	err := h.db.QueryRow("SELECT 1 FROM likes WHERE item_id = ? AND user_id = ?", itemID, userID).Scan(&one)
	return err == nil
}

func (h *CounterHandler) userPlays(trackID, userID string) int {
	var count int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM plays WHERE track_id = ? AND user_id = ?", trackID, userID).Scan(&count); err != nil {
		return 0
	}
	return count
}

func (h *CounterHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "err", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
