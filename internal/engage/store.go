package engage

import (
	"sync"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
)

// ItemState is the display-layer view of an item's engagement counters.
type ItemState struct {
	ItemID         string
	Title          string
	LikeCount      int
	ViewerHasLiked bool
}

// TrackState is the display-layer view of a track's play counters and
// metadata.
type TrackState struct {
	TrackID      string
	Title        string
	Artist       string
	AudioURL     string
	DurationSecs int
	PlayCount    int
	UserPlays    int
	SpotifyURL   string
	AppleURL     string
}

// PlatformLinks returns the track's external platform URLs, skipping empty
// entries.
func (t TrackState) PlatformLinks() []string {
	var links []string
	for _, link := range []string{t.SpotifyURL, t.AppleURL} {
		if link != "" {
			links = append(links, link)
		}
	}
	return links
}

type itemEntry struct {
	title     string
	likeCount int
	liked     bool
}

type trackEntry struct {
	state     TrackState
	playCount int
	userPlays int
}

// Store holds the in-memory engagement state the display layer reads and
// optimistic mutations act on.
//
// Counters may transiently dip below zero between a rollback and a
// concurrent mutation's completion; snapshots clamp at zero so the display
// never shows a negative count.
type Store struct {
	mu     sync.RWMutex
	items  map[string]*itemEntry
	tracks map[string]*trackEntry
	order  []string // item insertion order for stable listings
	torder []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		items:  make(map[string]*itemEntry),
		tracks: make(map[string]*trackEntry),
	}
}

// LoadItem seeds or replaces an item's state from a counter service read.
func (s *Store) LoadItem(item services.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = &itemEntry{
		title:     item.Title,
		likeCount: item.LikeCount,
		liked:     item.IsLiked,
	}
}

// LoadItemModel seeds an item's state from the local catalog cache.
func (s *Store) LoadItemModel(item *models.Item) {
	s.LoadItem(services.Item{
		ID:        item.ID(),
		Title:     item.Title(),
		LikeCount: item.LikeCount(),
		IsLiked:   item.ViewerHasLiked(),
	})
}

// LoadTrack seeds or replaces a track's state from a counter service read.
func (s *Store) LoadTrack(track services.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tracks[track.ID]; !ok {
		s.torder = append(s.torder, track.ID)
	}
	s.tracks[track.ID] = &trackEntry{
		state: TrackState{
			TrackID:      track.ID,
			Title:        track.Title,
			Artist:       track.Artist,
			AudioURL:     track.AudioURL,
			DurationSecs: track.DurationSecs,
			SpotifyURL:   track.SpotifyURL,
			AppleURL:     track.AppleURL,
		},
		playCount: track.PlayCount,
		userPlays: track.UserPlays,
	}
}

// LoadTrackModel seeds a track's state from the local catalog cache.
func (s *Store) LoadTrackModel(track *models.Track) {
	s.LoadTrack(services.Track{
		ID:           track.ID(),
		Title:        track.Title(),
		Artist:       track.Artist(),
		AudioURL:     track.AudioURL(),
		DurationSecs: track.DurationSecs(),
		PlayCount:    track.PlayCount(),
		UserPlays:    track.UserPlays(),
		SpotifyURL:   track.SpotifyURL(),
		AppleURL:     track.AppleURL(),
	})
}

// Item returns the current state for an item id.
func (s *Store) Item(id string) (ItemState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.items[id]
	if !ok {
		return ItemState{}, false
	}
	return itemSnapshot(id, entry), true
}

// Items returns all item states in load order.
func (s *Store) Items() []ItemState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]ItemState, 0, len(s.order))
	for _, id := range s.order {
		states = append(states, itemSnapshot(id, s.items[id]))
	}
	return states
}

// Track returns the current state for a track id.
func (s *Store) Track(id string) (TrackState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.tracks[id]
	if !ok {
		return TrackState{}, false
	}
	return trackSnapshot(entry), true
}

// Tracks returns all track states in load order.
func (s *Store) Tracks() []TrackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]TrackState, 0, len(s.torder))
	for _, id := range s.torder {
		states = append(states, trackSnapshot(s.tracks[id]))
	}
	return states
}

// adjustItem applies a relative delta and optional actor-flag flip to an
// item. Used for both the optimistic step and its rollback.
func (s *Store) adjustItem(id string, delta int, flip bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok {
		return false
	}
	entry.likeCount += delta
	if flip {
		entry.liked = !entry.liked
	}
	return true
}

// reconcileItem overwrites an item's state with server-declared values.
func (s *Store) reconcileItem(id string, likeCount int, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.items[id]; ok {
		entry.likeCount = likeCount
		entry.liked = liked
	}
}

// adjustTrack applies relative deltas to a track's play counters.
func (s *Store) adjustTrack(id string, playDelta, userDelta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tracks[id]
	if !ok {
		return false
	}
	entry.playCount += playDelta
	entry.userPlays += userDelta
	return true
}

// reconcileTrack overwrites a track's counters with server-declared values.
func (s *Store) reconcileTrack(id string, playCount, userPlays int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.tracks[id]; ok {
		entry.playCount = playCount
		entry.userPlays = userPlays
	}
}

func itemSnapshot(id string, entry *itemEntry) ItemState {
	return ItemState{
		ItemID:         id,
		Title:          entry.title,
		LikeCount:      max(entry.likeCount, 0),
		ViewerHasLiked: entry.liked,
	}
}

func trackSnapshot(entry *trackEntry) TrackState {
	state := entry.state
	state.PlayCount = max(entry.playCount, 0)
	state.UserPlays = max(entry.userPlays, 0)
	return state
}
