package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

type mockCatalog struct {
	mu            sync.Mutex
	items         []services.Item
	tracks        []services.Track
	listItemsErr  error
	listTracksErr error
	getItemErr    error
	getTrackErr   error
	getItemCalls  int
	getTrackCalls int
}

func (m *mockCatalog) ListItems(ctx context.Context) ([]services.Item, error) {
	if m.listItemsErr != nil {
		return nil, m.listItemsErr
	}
	return m.items, nil
}

func (m *mockCatalog) GetItem(ctx context.Context, itemID string) (*services.Item, error) {
	m.mu.Lock()
	m.getItemCalls++
	m.mu.Unlock()
	if m.getItemErr != nil {
		return nil, m.getItemErr
	}
	for _, item := range m.items {
		if item.ID == itemID {
			found := item
			found.LikeCount++
			return &found, nil
		}
	}
	return nil, fmt.Errorf("item not found")
}

func (m *mockCatalog) ListTracks(ctx context.Context) ([]services.Track, error) {
	if m.listTracksErr != nil {
		return nil, m.listTracksErr
	}
	return m.tracks, nil
}

func (m *mockCatalog) GetTrack(ctx context.Context, trackID string) (*services.Track, error) {
	m.mu.Lock()
	m.getTrackCalls++
	m.mu.Unlock()
	if m.getTrackErr != nil {
		return nil, m.getTrackErr
	}
	for _, track := range m.tracks {
		if track.ID == trackID {
			found := track
			found.PlayCount++
			return &found, nil
		}
	}
	return nil, fmt.Errorf("track not found")
}

type mockCache struct {
	mu       sync.Mutex
	items    []services.Item
	tracks   []services.Track
	itemErr  error
	trackErr error
}

func (m *mockCache) CacheItem(item services.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itemErr != nil {
		return m.itemErr
	}
	m.items = append(m.items, item)
	return nil
}

func (m *mockCache) CacheTrack(track services.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trackErr != nil {
		return m.trackErr
	}
	m.tracks = append(m.tracks, track)
	return nil
}

func newCatalog() *mockCatalog {
	return &mockCatalog{
		items: []services.Item{
			{ID: "i1", Title: "First", LikeCount: 3},
			{ID: "i2", Title: "Second", LikeCount: 0},
		},
		tracks: []services.Track{
			{ID: "t1", Title: "Opener", Artist: "Band", PlayCount: 10, UserPlays: 1},
		},
	}
}

func TestRefreshEngineLoad(t *testing.T) {
	t.Run("loads both collections into the store", func(t *testing.T) {
		store := engage.NewStore()
		engine := NewRefreshEngine(newCatalog(), nil, store)

		result, err := engine.Load(context.Background(), nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if result.TotalItems != 2 || result.TotalTracks != 1 {
			t.Errorf("unexpected totals: %+v", result)
		}
		if state, ok := store.Item("i1"); !ok || state.LikeCount != 3 {
			t.Errorf("item i1 not loaded: %+v", state)
		}
		if state, ok := store.Track("t1"); !ok || state.PlayCount != 10 {
			t.Errorf("track t1 not loaded: %+v", state)
		}
	})

	t.Run("propagates listing errors", func(t *testing.T) {
		catalog := newCatalog()
		catalog.listItemsErr = errors.New("service down")
		engine := NewRefreshEngine(catalog, nil, engage.NewStore())

		if _, err := engine.Load(context.Background(), nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("nil api is rejected", func(t *testing.T) {
		engine := NewRefreshEngine(nil, nil, engage.NewStore())
		if _, err := engine.Load(context.Background(), nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestRefreshEngineRefresh(t *testing.T) {
	t.Run("refreshes every entity and writes through the cache", func(t *testing.T) {
		store := engage.NewStore()
		catalog := newCatalog()
		cache := &mockCache{}
		engine := NewRefreshEngine(catalog, cache, store)

		result, err := engine.Refresh(context.Background(), nil, RefreshOpts{NumWorkers: 2, RateLimit: 1000})
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if result.RefreshedOK != 3 || result.Failed != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
		if len(cache.items) != 2 || len(cache.tracks) != 1 {
			t.Errorf("cache received %d items, %d tracks", len(cache.items), len(cache.tracks))
		}

		// The per-entity fetch returns bumped counters; the store should
		// hold the authoritative values, not the listing's.
		if state, _ := store.Item("i1"); state.LikeCount != 4 {
			t.Errorf("expected refreshed count 4, got %d", state.LikeCount)
		}
		if state, _ := store.Track("t1"); state.PlayCount != 11 {
			t.Errorf("expected refreshed count 11, got %d", state.PlayCount)
		}
	})

	t.Run("continues past per-entity failures", func(t *testing.T) {
		catalog := newCatalog()
		catalog.getItemErr = errors.New("flaky endpoint")
		engine := NewRefreshEngine(catalog, &mockCache{}, engage.NewStore())

		result, err := engine.Refresh(context.Background(), nil, RefreshOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Failed != 2 {
			t.Errorf("expected 2 failed items, got %d", result.Failed)
		}
		if result.RefreshedOK != 1 {
			t.Errorf("expected the track to refresh, got %d", result.RefreshedOK)
		}
	})

	t.Run("cache failures are reported per entity", func(t *testing.T) {
		cache := &mockCache{itemErr: errors.New("disk full")}
		engine := NewRefreshEngine(newCatalog(), cache, engage.NewStore())

		result, err := engine.Refresh(context.Background(), nil, RefreshOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if result.Failed != 2 {
			t.Errorf("expected 2 cache failures, got %d", result.Failed)
		}
	})

	t.Run("skip cache leaves the repository untouched", func(t *testing.T) {
		cache := &mockCache{}
		engine := NewRefreshEngine(newCatalog(), cache, engage.NewStore())

		if _, err := engine.Refresh(context.Background(), nil, RefreshOpts{RateLimit: 1000, SkipCache: true}); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if len(cache.items) != 0 || len(cache.tracks) != 0 {
			t.Error("cache was written despite SkipCache")
		}
	})

	t.Run("reports progress without blocking", func(t *testing.T) {
		engine := NewRefreshEngine(newCatalog(), nil, engage.NewStore())

		// Deliberately undersized channel: updates past the first must be
		// dropped, never block the run.
		progress := make(chan ProgressUpdate, 1)
		if _, err := engine.Refresh(context.Background(), progress, RefreshOpts{RateLimit: 1000}); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		select {
		case update := <-progress:
			if update.Message == "" {
				t.Error("empty progress message")
			}
		default:
			t.Error("expected at least one progress update")
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewRefreshEngine(newCatalog(), nil, engage.NewStore())
		result, err := engine.Refresh(ctx, nil, RefreshOpts{RateLimit: 1000})
		if err == nil {
			t.Fatalf("expected context error, got result %+v", result)
		}
	})
}
