// Counter service implementation of [CounterAPI]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/encore/internal/shared"
)

// CounterService implements [CounterAPI] over HTTP.
//
// Mutation endpoints map the service's idempotence statuses onto typed
// errors: 409 becomes [shared.ErrDuplicate] without decoding a body, since
// the caller keeps its optimistic state, and 401 becomes
// [shared.ErrUnauthorized].
type CounterService struct {
	baseURL    string
	httpClient *http.Client
	viewerID   string
}

// NewCounterService creates a new counter service client.
func NewCounterService(baseURL string, client *http.Client) *CounterService {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CounterService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// SetViewer attributes catalog reads to the given user so per-viewer
// state (is_liked, user_plays) comes back with the counts. An empty id
// reverts reads to anonymous.
func (s *CounterService) SetViewer(userID string) {
	s.viewerID = userID
}

// viewerQuery returns the catalog-read query string for the attributed
// viewer, or the empty string for anonymous reads.
func (s *CounterService) viewerQuery() string {
	if s.viewerID == "" {
		return ""
	}
	return "?user_id=" + url.QueryEscape(s.viewerID)
}

// likeRequest is the wire body for the like endpoint. The pointer user id
// serializes to null for anonymous likes.
type likeRequest struct {
	UserID *string `json:"user_id"`
	Liked  bool    `json:"liked"`
}

type playRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// doRequest performs an HTTP request against the counter service and decodes
// the JSON response into result. A non-empty token is sent as a bearer
// credential.
func (s *CounterService) doRequest(ctx context.Context, method, endpoint, token string, body, result any) (int, error) {
	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return resp.StatusCode, shared.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	case resp.StatusCode == http.StatusConflict:
		// Duplicate action: the caller's intent was already satisfied
		// server-side, so the optimistic local state stands.
		return resp.StatusCode, shared.ErrDuplicate
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return resp.StatusCode, fmt.Errorf("counter service error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// ListItems retrieves all engageable items with their counters.
func (s *CounterService) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if _, err := s.doRequest(ctx, http.MethodGet, "/items"+s.viewerQuery(), "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem retrieves a single item by ID.
func (s *CounterService) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	endpoint := fmt.Sprintf("/items/%s%s", url.PathEscape(itemID), s.viewerQuery())
	status, err := s.doRequest(ctx, http.MethodGet, endpoint, "", nil, &item)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListTracks retrieves all playable tracks with their counters.
func (s *CounterService) ListTracks(ctx context.Context) ([]Track, error) {
	var tracks []Track
	if _, err := s.doRequest(ctx, http.MethodGet, "/tracks"+s.viewerQuery(), "", nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// GetTrack retrieves a single track by ID.
func (s *CounterService) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	var track Track
	endpoint := fmt.Sprintf("/tracks/%s%s", url.PathEscape(trackID), s.viewerQuery())
	status, err := s.doRequest(ctx, http.MethodGet, endpoint, "", nil, &track)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// Like posts the viewer's intended like state for an item.
func (s *CounterService) Like(ctx context.Context, itemID string, userID *string, liked bool) (*LikeResult, error) {
	var result LikeResult
	endpoint := fmt.Sprintf("/items/%s/like", url.PathEscape(itemID))
	if _, err := s.doRequest(ctx, http.MethodPost, endpoint, "", likeRequest{UserID: userID, Liked: liked}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IncrementPlay records one play for the track with a bearer credential.
// The session id deduplicates retries of the same playback session.
func (s *CounterService) IncrementPlay(ctx context.Context, trackID, userID, sessionID, token string) (*PlayResult, error) {
	var result PlayResult
	endpoint := fmt.Sprintf("/tracks/%s/play", url.PathEscape(trackID))
	if _, err := s.doRequest(ctx, http.MethodPut, endpoint, token, playRequest{UserID: userID, SessionID: sessionID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
