package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// CounterCacheAdapter implements tasks.CounterCache using the item and
// track repositories.
//
// Refresh operations write remote counter reads through this adapter:
// unknown catalog entries are inserted, known ones get their counter
// columns overwritten with the authoritative values.
type CounterCacheAdapter struct {
	items  *ItemRepository
	tracks *TrackRepository
}

// NewCounterCacheAdapter creates a new CounterCacheAdapter over the given repositories
func NewCounterCacheAdapter(items *ItemRepository, tracks *TrackRepository) *CounterCacheAdapter {
	return &CounterCacheAdapter{items: items, tracks: tracks}
}

// CacheItem upserts an item read from the counter service.
func (a *CounterCacheAdapter) CacheItem(item services.Item) error {
	err := a.items.UpdateCounters(item.ID, item.LikeCount, item.IsLiked)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrItemNotFound) {
		return fmt.Errorf("failed to cache item: %w", err)
	}

	record := models.NewItem(0, item.Title)
	record.SetID(item.ID)
	record.SetLikeCount(item.LikeCount)
	record.SetViewerHasLiked(item.IsLiked)

	if err := a.items.Create(record); err != nil {
		return fmt.Errorf("failed to cache item: %w", err)
	}
	return nil
}

// CacheTrack upserts a track read from the counter service.
func (a *CounterCacheAdapter) CacheTrack(track services.Track) error {
	err := a.tracks.UpdateCounters(track.ID, track.PlayCount, track.UserPlays)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrTrackNotFound) {
		return fmt.Errorf("failed to cache track: %w", err)
	}

	record := models.NewTrack(0, track.Title, track.Artist, track.AudioURL)
	record.SetID(track.ID)
	record.SetDurationSecs(track.DurationSecs)
	record.SetPlayCount(track.PlayCount)
	record.SetUserPlays(track.UserPlays)
	record.SetSpotifyURL(track.SpotifyURL)
	record.SetAppleURL(track.AppleURL)

	if err := a.tracks.Create(record); err != nil {
		return fmt.Errorf("failed to cache track: %w", err)
	}
	return nil
}
