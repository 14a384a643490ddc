package engage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

type recordingGate struct {
	mu          sync.Mutex
	invalidated int
}

func (g *recordingGate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalidated++
}

func (g *recordingGate) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.invalidated
}

func seededStore() *Store {
	s := NewStore()
	s.LoadItem(services.Item{ID: "i1", Title: "First", LikeCount: 3, IsLiked: false})
	s.LoadItem(services.Item{ID: "i2", Title: "Second", LikeCount: 0, IsLiked: false})
	s.LoadTrack(services.Track{ID: "t1", Title: "Opener", Artist: "Band", AudioURL: "https://cdn.example.com/t1.mp3", PlayCount: 10, UserPlays: 2})
	return s
}

func await(t *testing.T, outcome <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-outcome:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("mutation never settled")
		return Outcome{}
	}
}

func TestEngineApply(t *testing.T) {
	t.Run("optimistic step is visible before settlement", func(t *testing.T) {
		store := seededStore()
		engine := NewEngine(store, nil, nil)

		block := make(chan struct{})
		outcome, err := engine.Apply(context.Background(), Intent{Kind: Like, Key: "i1", Delta: 1, FlipActor: true}, func(ctx context.Context) (*Authoritative, error) {
			<-block
			return &Authoritative{Count: 4, Actor: true}, nil
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		state, _ := store.Item("i1")
		if state.LikeCount != 4 || !state.ViewerHasLiked {
			t.Errorf("optimistic state not applied, got %d/%v", state.LikeCount, state.ViewerHasLiked)
		}

		close(block)
		if o := await(t, outcome); o.Result != Reconciled {
			t.Errorf("expected Reconciled, got %v", o.Result)
		}
	})

	t.Run("reconciles to authoritative values", func(t *testing.T) {
		store := seededStore()
		engine := NewEngine(store, nil, nil)

		outcome, err := engine.Apply(context.Background(), Intent{Kind: Like, Key: "i1", Delta: 1, FlipActor: true}, func(ctx context.Context) (*Authoritative, error) {
			return &Authoritative{Count: 9, Actor: true}, nil
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		await(t, outcome)

		state, _ := store.Item("i1")
		if state.LikeCount != 9 {
			t.Errorf("expected authoritative count 9, got %d", state.LikeCount)
		}
	})

	t.Run("duplicate keeps the optimistic state", func(t *testing.T) {
		store := seededStore()
		engine := NewEngine(store, nil, nil)

		outcome, err := engine.Apply(context.Background(), Intent{Kind: Like, Key: "i1", Delta: 1, FlipActor: true}, func(ctx context.Context) (*Authoritative, error) {
			return nil, shared.ErrDuplicate
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		o := await(t, outcome)
		if o.Result != Applied {
			t.Errorf("expected Applied on duplicate, got %v", o.Result)
		}
		if o.Err != nil {
			t.Errorf("duplicate settlement carried error: %v", o.Err)
		}
		state, _ := store.Item("i1")
		if state.LikeCount != 4 || !state.ViewerHasLiked {
			t.Errorf("optimistic state lost on duplicate, got %d/%v", state.LikeCount, state.ViewerHasLiked)
		}
	})

	t.Run("failure rolls back exactly its own deltas", func(t *testing.T) {
		store := seededStore()
		engine := NewEngine(store, nil, nil)

		// A concurrent mutation lands between the optimistic step and the
		// failure. The rollback must subtract relative deltas so the
		// concurrent change survives.
		release := make(chan struct{})
		outcome, err := engine.Apply(context.Background(), Intent{Kind: PlayIncrement, Key: "t1", Delta: 1, UserDelta: 1}, func(ctx context.Context) (*Authoritative, error) {
			<-release
			return nil, shared.ErrServiceUnavailable
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		second, err := engine.Apply(context.Background(), Intent{Kind: PlayIncrement, Key: "t1", Delta: 1, UserDelta: 1}, func(ctx context.Context) (*Authoritative, error) {
			return &Authoritative{Count: 12, UserCount: 4}, nil
		})
		if err != nil {
			t.Fatalf("second Apply failed: %v", err)
		}
		await(t, second)

		close(release)
		o := await(t, outcome)
		if o.Result != RolledBack {
			t.Fatalf("expected RolledBack, got %v", o.Result)
		}
		if !errors.Is(o.Err, shared.ErrServiceUnavailable) {
			t.Errorf("expected wrapped failure, got %v", o.Err)
		}

		state, _ := store.Track("t1")
		if state.PlayCount != 11 || state.UserPlays != 3 {
			t.Errorf("expected 11/3 after relative rollback, got %d/%d", state.PlayCount, state.UserPlays)
		}
	})

	t.Run("unauthorized invalidates the identity gate", func(t *testing.T) {
		store := seededStore()
		gate := &recordingGate{}
		engine := NewEngine(store, gate, nil)

		outcome, err := engine.Apply(context.Background(), Intent{Kind: PlayIncrement, Key: "t1", Delta: 1, UserDelta: 1}, func(ctx context.Context) (*Authoritative, error) {
			return nil, shared.ErrUnauthorized
		})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		o := await(t, outcome)
		if o.Result != RolledBack {
			t.Errorf("expected RolledBack, got %v", o.Result)
		}
		if gate.count() != 1 {
			t.Errorf("expected one invalidation, got %d", gate.count())
		}
		state, _ := store.Track("t1")
		if state.PlayCount != 10 || state.UserPlays != 2 {
			t.Errorf("expected rollback to 10/2, got %d/%d", state.PlayCount, state.UserPlays)
		}
	})

	t.Run("unknown keys fail synchronously", func(t *testing.T) {
		engine := NewEngine(seededStore(), nil, nil)

		_, err := engine.Apply(context.Background(), Intent{Kind: Like, Key: "missing", Delta: 1}, nil)
		if !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
		_, err = engine.Apply(context.Background(), Intent{Kind: PlayIncrement, Key: "missing", Delta: 1}, nil)
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestStoreSnapshots(t *testing.T) {
	t.Run("counts never display below zero", func(t *testing.T) {
		store := seededStore()
		store.adjustItem("i2", -2, false)

		state, _ := store.Item("i2")
		if state.LikeCount != 0 {
			t.Errorf("expected clamped count 0, got %d", state.LikeCount)
		}

		// The raw value is preserved so a compensating adjustment nets
		// out instead of drifting.
		store.adjustItem("i2", 2, false)
		state, _ = store.Item("i2")
		if state.LikeCount != 0 {
			t.Errorf("expected count 0 after compensation, got %d", state.LikeCount)
		}
	})

	t.Run("listing preserves load order", func(t *testing.T) {
		store := seededStore()
		items := store.Items()
		if len(items) != 2 || items[0].ItemID != "i1" || items[1].ItemID != "i2" {
			t.Errorf("unexpected item order: %+v", items)
		}
	})

	t.Run("track links include only populated platforms", func(t *testing.T) {
		store := NewStore()
		store.LoadTrack(services.Track{ID: "t9", Title: "Solo", SpotifyURL: "https://open.spotify.com/track/t9"})
		state, _ := store.Track("t9")
		links := state.PlatformLinks()
		if len(links) != 1 || links[0] != "https://open.spotify.com/track/t9" {
			t.Errorf("unexpected links: %v", links)
		}
	})
}
