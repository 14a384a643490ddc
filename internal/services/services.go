// package services defines interface CounterAPI for the remote counter service
package services

import (
	"context"
)

// CounterAPI defines the client surface of the remote counter service: the
// catalog read endpoints and the two mutation endpoints the engagement core
// drives.
type CounterAPI interface {
	// ListItems retrieves all engageable items with their counters.
	ListItems(ctx context.Context) ([]Item, error)

	// GetItem retrieves a single item by ID.
	GetItem(ctx context.Context, itemID string) (*Item, error)

	// ListTracks retrieves all playable tracks with their counters.
	ListTracks(ctx context.Context) ([]Track, error)

	// GetTrack retrieves a single track by ID.
	GetTrack(ctx context.Context, trackID string) (*Track, error)

	// Like posts the viewer's intended like state for an item. A nil userID
	// records an anonymous like that the service cannot attribute.
	// A duplicate-action response is reported as shared.ErrDuplicate and
	// callers keep their optimistic local state.
	Like(ctx context.Context, itemID string, userID *string, liked bool) (*LikeResult, error)

	// IncrementPlay records one play for the track, attributed to userID
	// and authorized by the bearer token. sessionID keys the increment so
	// a replay for the same playback session reports shared.ErrDuplicate.
	// shared.ErrUnauthorized signals the session identity must be
	// invalidated.
	IncrementPlay(ctx context.Context, trackID, userID, sessionID, token string) (*PlayResult, error)
}

// Item represents an engageable item as declared by the counter service.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	LikeCount int    `json:"like_count"`
	IsLiked   bool   `json:"is_liked"`
}

// Track represents a playable track as declared by the counter service.
type Track struct {
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

// LikeResult is the authoritative state returned by the like endpoint.
type LikeResult struct {
	LikeCount int  `json:"like_count"`
	IsLiked   bool `json:"is_liked"`
}

// PlayResult is the authoritative state returned by the play endpoint.
type PlayResult struct {
	PlayCount int `json:"play_count"`
	UserPlays int `json:"user_plays"`
}
