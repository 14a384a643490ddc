package engage

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/shared"
)

// Kind enumerates mutation intents.
type Kind int

const (
	Like Kind = iota
	Unlike
	PlayIncrement
)

func (k Kind) String() string {
	switch k {
	case Like:
		return "like"
	case Unlike:
		return "unlike"
	case PlayIncrement:
		return "play_increment"
	default:
		return ""
	}
}

// Intent describes one pending optimistic change. It records exactly the
// deltas applied in the optimistic step so a rollback can subtract them
// relative to whatever the counter holds at completion time, never an
// absolute value that would clobber a concurrent mutation.
type Intent struct {
	Kind      Kind
	Key       string // item or track id
	Delta     int    // applied to the primary counter
	UserDelta int    // applied to the user-attributed play counter
	FlipActor bool   // whether the optimistic step flips the liked flag
}

// Result classifies how a mutation settled.
type Result int

const (
	// Applied: the optimistic state stands. Either the mutation was
	// skipped locally or the service reported a duplicate action, which
	// means the intent was already satisfied server-side.
	Applied Result = iota
	// Reconciled: local state was overwritten with the server's
	// authoritative values.
	Reconciled
	// RolledBack: the side effect failed and the optimistic deltas were
	// reverted.
	RolledBack
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case Reconciled:
		return "reconciled"
	case RolledBack:
		return "rolled_back"
	default:
		return ""
	}
}

// Outcome reports the settlement of one mutation.
type Outcome struct {
	Intent Intent
	Result Result
	Err    error // populated only for RolledBack
}

// Authoritative carries server-declared counter values used for
// reconciliation.
type Authoritative struct {
	Count     int
	UserCount int
	Actor     bool
}

// SideEffect performs the remote mutation and returns the authoritative
// state on success.
type SideEffect func(ctx context.Context) (*Authoritative, error)

// InvalidatorGate is the slice of the identity gate the engine needs: the
// single code path for demoting the session on an unauthorized response.
type InvalidatorGate interface {
	Invalidate()
}

// Engine is the optimistic mutation primitive shared by the like toggle
// controller and the playback session controller.
//
// Apply mutates local state synchronously, runs the side effect without
// blocking the caller, and settles the mutation when the side effect
// resolves: reconcile on success, keep on duplicate, roll back otherwise.
// Concurrent mutations for the same key are allowed; each settles against
// only its own deltas.
type Engine struct {
	store  *Store
	gate   InvalidatorGate
	logger *log.Logger
}

// NewEngine creates an Engine over the given store. The gate may be nil
// when no identity invalidation is wanted (tests).
func NewEngine(store *Store, gate InvalidatorGate, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{store: store, gate: gate, logger: logger}
}

// Apply performs one optimistic mutation. The returned channel delivers
// exactly one Outcome and is then closed.
//
// The optimistic step has completed (and is visible to readers of the
// store) before Apply returns.
func (e *Engine) Apply(ctx context.Context, intent Intent, sideEffect SideEffect) (<-chan Outcome, error) {
	if !e.apply(intent) {
		return nil, fmt.Errorf("%w: %s", keyError(intent), intent.Key)
	}

	outcome := make(chan Outcome, 1)

	go func() {
		defer close(outcome)
		outcome <- e.settle(ctx, intent, sideEffect)
	}()

	return outcome, nil
}

// apply performs the synchronous optimistic step.
func (e *Engine) apply(intent Intent) bool {
	switch intent.Kind {
	case PlayIncrement:
		return e.store.adjustTrack(intent.Key, intent.Delta, intent.UserDelta)
	default:
		return e.store.adjustItem(intent.Key, intent.Delta, intent.FlipActor)
	}
}

// settle awaits the side effect and resolves the mutation.
func (e *Engine) settle(ctx context.Context, intent Intent, sideEffect SideEffect) Outcome {
	auth, err := sideEffect(ctx)

	switch {
	case err == nil:
		e.reconcile(intent, auth)
		return Outcome{Intent: intent, Result: Reconciled}

	case errors.Is(err, shared.ErrDuplicate):
		// Idempotent success: the actor's intent was satisfied server-side
		// previously, so the optimistic state is already correct.
		e.logger.Debug("duplicate action accepted", "kind", intent.Kind, "key", intent.Key)
		return Outcome{Intent: intent, Result: Applied}

	default:
		if errors.Is(err, shared.ErrUnauthorized) && e.gate != nil {
			e.gate.Invalidate()
		}
		e.rollback(intent)
		e.logger.Warn("mutation rolled back", "kind", intent.Kind, "key", intent.Key, "err", err)
		return Outcome{Intent: intent, Result: RolledBack, Err: err}
	}
}

// reconcile overwrites local state with the server's authoritative values.
func (e *Engine) reconcile(intent Intent, auth *Authoritative) {
	if auth == nil {
		return
	}
	switch intent.Kind {
	case PlayIncrement:
		e.store.reconcileTrack(intent.Key, auth.Count, auth.UserCount)
	default:
		e.store.reconcileItem(intent.Key, auth.Count, auth.Actor)
	}
}

// rollback reverts exactly the deltas the optimistic step applied.
func (e *Engine) rollback(intent Intent) {
	switch intent.Kind {
	case PlayIncrement:
		e.store.adjustTrack(intent.Key, -intent.Delta, -intent.UserDelta)
	default:
		e.store.adjustItem(intent.Key, -intent.Delta, intent.FlipActor)
	}
}

func keyError(intent Intent) error {
	if intent.Kind == PlayIncrement {
		return shared.ErrTrackNotFound
	}
	return shared.ErrItemNotFound
}
