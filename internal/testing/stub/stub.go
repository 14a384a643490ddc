// package stub contains test doubles that depend on internal/services.
// They live apart from internal/testing so that package stays importable
// from the services package's own tests without an import cycle.
package stub

import (
	"context"
	"sync"

	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// StubCounterAPI is a test double for [services.CounterAPI]. Zero value
// serves an empty catalog; populate the fields to control responses.
type StubCounterAPI struct {
	mu sync.Mutex

	Items  []services.Item
	Tracks []services.Track

	LikeRes *services.LikeResult
	LikeErr error
	PlayRes *services.PlayResult
	PlayErr error

	LikeCalls int
	PlayCalls int
}

func (s *StubCounterAPI) ListItems(ctx context.Context) ([]services.Item, error) {
	return s.Items, nil
}

func (s *StubCounterAPI) GetItem(ctx context.Context, itemID string) (*services.Item, error) {
	for _, item := range s.Items {
		if item.ID == itemID {
			found := item
			return &found, nil
		}
	}
	return nil, shared.ErrItemNotFound
}

func (s *StubCounterAPI) ListTracks(ctx context.Context) ([]services.Track, error) {
	return s.Tracks, nil
}

func (s *StubCounterAPI) GetTrack(ctx context.Context, trackID string) (*services.Track, error) {
	for _, track := range s.Tracks {
		if track.ID == trackID {
			found := track
			return &found, nil
		}
	}
	return nil, shared.ErrTrackNotFound
}

func (s *StubCounterAPI) Like(ctx context.Context, itemID string, userID *string, liked bool) (*services.LikeResult, error) {
	s.mu.Lock()
	s.LikeCalls++
	s.mu.Unlock()
	if s.LikeErr != nil {
		return nil, s.LikeErr
	}
	if s.LikeRes != nil {
		res := *s.LikeRes
		return &res, nil
	}
	return &services.LikeResult{IsLiked: liked, LikeCount: 1}, nil
}

func (s *StubCounterAPI) IncrementPlay(ctx context.Context, trackID, userID, sessionID, token string) (*services.PlayResult, error) {
	s.mu.Lock()
	s.PlayCalls++
	s.mu.Unlock()
	if s.PlayErr != nil {
		return nil, s.PlayErr
	}
	if s.PlayRes != nil {
		res := *s.PlayRes
		return &res, nil
	}
	return &services.PlayResult{PlayCount: 1, UserPlays: 1}, nil
}
