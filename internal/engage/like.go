package engage

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/session"
	"github.com/desertthunder/encore/internal/shared"
)

// Liker is the slice of the counter service the like controller drives.
type Liker interface {
	Like(ctx context.Context, itemID string, userID *string, liked bool) (*services.LikeResult, error)
}

// IdentityGate exposes the current session identity to mutation paths.
// Implemented by [session.Gate].
type IdentityGate interface {
	Current() *session.Identity
}

// LikeController wraps the mutation engine for the like/unlike protocol.
//
// Toggles are independent optimistic deltas: issuing another toggle while
// a prior one is in flight is allowed, and the displayed count converges
// on whatever the last-resolved authoritative response states.
type LikeController struct {
	store  *Store
	engine *Engine
	api    Liker
	gate   IdentityGate
	logger *log.Logger
}

// NewLikeController creates a LikeController.
func NewLikeController(store *Store, engine *Engine, api Liker, gate IdentityGate, logger *log.Logger) *LikeController {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LikeController{store: store, engine: engine, api: api, gate: gate, logger: logger}
}

// Toggle flips the viewer's like state for an item.
//
// When the viewer has not liked the item and its count is already zero the
// toggle is a no-op: the zero floor makes an unlike impossible, and a
// like in that position indicates the liked flag and the count have
// drifted apart before the first interaction. No network call is made and
// the returned channel delivers a single Applied outcome.
func (c *LikeController) Toggle(ctx context.Context, itemID string) (<-chan Outcome, error) {
	state, ok := c.store.Item(itemID)
	if !ok {
		return nil, shared.ErrItemNotFound
	}

	if !state.ViewerHasLiked && state.LikeCount == 0 {
		c.logger.Debug("toggle skipped at zero floor", "item", itemID)
		outcome := make(chan Outcome, 1)
		outcome <- Outcome{Intent: Intent{Kind: Like, Key: itemID}, Result: Applied}
		close(outcome)
		return outcome, nil
	}

	intent := Intent{Kind: Like, Key: itemID, Delta: 1, FlipActor: true}
	if state.ViewerHasLiked {
		intent.Kind = Unlike
		intent.Delta = -1
	}

	// The identity read happens at toggle time, not controller
	// construction: the gate may have been invalidated since.
	var userID *string
	if ident := c.gate.Current(); ident != nil {
		userID = &ident.UserID
	}

	liked := !state.ViewerHasLiked

	return c.engine.Apply(ctx, intent, func(ctx context.Context) (*Authoritative, error) {
		res, err := c.api.Like(ctx, itemID, userID, liked)
		if err != nil {
			return nil, err
		}
		return &Authoritative{Count: res.LikeCount, Actor: res.IsLiked}, nil
	})
}
