package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// State enumerates playback session states.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Interrupted
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Interrupted:
		return "interrupted"
	case Ended:
		return "ended"
	default:
		return ""
	}
}

// playSession is the ephemeral per-track session. At most one exists at a
// time; starting another track tears the previous one down.
type playSession struct {
	id          string
	trackID     string
	startedAt   time.Time
	incremented bool
	timer       *time.Timer
	player      Player
	state       State
}

// Snapshot is the display-layer view of the active session.
type Snapshot struct {
	TrackID     string
	Title       string
	Artist      string
	PlayCount   int
	UserPlays   int
	State       State
	IsPlaying   bool
	Interrupted bool
	Progress    time.Duration
	Duration    time.Duration
}

// Prompt is the continuation decision point surfaced when the preview
// limit interrupts playback: the track plus its external platform links.
type Prompt struct {
	Track engage.TrackState
	Links []string
}

// Incrementer is the slice of the counter service the controller drives.
// The session id is the increment's idempotency key: replays for the same
// session are rejected server-side.
type Incrementer interface {
	IncrementPlay(ctx context.Context, trackID, userID, sessionID, token string) (*services.PlayResult, error)
}

// Controller owns the single audio resource and the active playback
// session, and fires the play-count increment exactly once per session.
type Controller struct {
	mu           sync.Mutex
	provider     Provider
	api          Incrementer
	gate         engage.IdentityGate
	engine       *engage.Engine
	store        *engage.Store
	logger       *log.Logger
	previewLimit time.Duration
	onInterrupt  func(Prompt)
	onSettle     func(engage.Outcome)
	current      *playSession
}

// ControllerOpts contains the controller's dependencies.
type ControllerOpts struct {
	Provider     Provider
	API          Incrementer
	Gate         engage.IdentityGate
	Engine       *engage.Engine
	Store        *engage.Store
	Logger       *log.Logger
	PreviewLimit time.Duration
	OnInterrupt  func(Prompt)

	// OnSettle, when set, receives each play-count settlement outcome
	// after the local state has been reconciled or rolled back.
	OnSettle func(engage.Outcome)
}

// NewController creates a Controller. PreviewLimit defaults to 30 seconds
// when unset.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = 30 * time.Second
	}
	return &Controller{
		provider:     opts.Provider,
		api:          opts.API,
		gate:         opts.Gate,
		engine:       opts.Engine,
		store:        opts.Store,
		logger:       opts.Logger,
		previewLimit: opts.PreviewLimit,
		onInterrupt:  opts.OnInterrupt,
		onSettle:     opts.OnSettle,
	}
}

// Start begins playback of a track, tearing down any previous session
// first. The play-count increment fires here, once per session, and only
// when a session identity is present; guest plays are never counted.
func (c *Controller) Start(ctx context.Context, trackID string) error {
	state, ok := c.store.Track(trackID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Previous session is discarded without touching its counters, and
	// its timer is cancelled before the new session exists, so a stale
	// fire cannot land in the replacement.
	c.teardownLocked()

	player, err := c.provider.Open(state.AudioURL)
	if err != nil {
		return fmt.Errorf("failed to open audio resource: %w", err)
	}

	sess := &playSession{
		id:        shared.GenerateID(),
		trackID:   trackID,
		startedAt: time.Now(),
		player:    player,
		state:     Playing,
	}
	c.current = sess

	if err := player.Play(); err != nil {
		c.current = nil
		return fmt.Errorf("failed to start playback: %w", err)
	}

	c.armTimerLocked(sess)
	c.incrementLocked(ctx, sess)

	c.logger.Info("playback started", "track", trackID)
	return nil
}

// Pause suspends playback at the user's request and cancels the
// interruption timer. The session's increment state is unaffected.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.current
	if sess == nil {
		return shared.ErrNoSession
	}
	if sess.state != Playing {
		return nil
	}

	c.stopTimerLocked(sess)
	sess.state = Paused
	return sess.player.Pause()
}

// Resume continues playback from Paused or Interrupted. The interruption
// timer is re-armed; the increment never re-fires for the session's life.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.current
	if sess == nil {
		return shared.ErrNoSession
	}
	if sess.state != Paused && sess.state != Interrupted {
		return nil
	}

	sess.state = Playing
	c.armTimerLocked(sess)
	return sess.player.Play()
}

// HandleEnded processes the audio resource's natural end-of-track signal:
// the session is destroyed and progress tracking cleared. No counter
// mutation is issued.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.current
	if sess == nil {
		return
	}
	c.endLocked(sess)
}

// HandleTimeUpdate processes a progress tick. Players report position but
// carry no end-of-track callback, so a Playing session whose position has
// reached its duration is ended here. Paused and interrupted sessions are
// left alone.
func (c *Controller) HandleTimeUpdate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.current
	if sess == nil || sess.state != Playing {
		return
	}

	d := sess.player.Duration()
	if d > 0 && sess.player.Position() >= d {
		c.endLocked(sess)
	}
}

func (c *Controller) endLocked(sess *playSession) {
	c.stopTimerLocked(sess)
	sess.state = Ended
	c.current = nil
	c.logger.Info("playback ended", "track", sess.trackID)
}

// Stop discards the active session, pausing its audio resource. Used on
// shutdown; counters are untouched.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// Snapshot returns the display-layer view of the active session, or a
// zero snapshot in the Idle state when none exists.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.current
	if sess == nil {
		return Snapshot{State: Idle}
	}

	snap := Snapshot{
		TrackID:     sess.trackID,
		State:       sess.state,
		IsPlaying:   sess.state == Playing,
		Interrupted: sess.state == Interrupted,
		Progress:    sess.player.Position(),
		Duration:    sess.player.Duration(),
	}

	if state, ok := c.store.Track(sess.trackID); ok {
		snap.Title = state.Title
		snap.Artist = state.Artist
		snap.PlayCount = state.PlayCount
		snap.UserPlays = state.UserPlays
	}

	return snap
}

// teardownLocked discards the current session: audio paused, timer
// cancelled, no counter mutation either way.
func (c *Controller) teardownLocked() {
	sess := c.current
	if sess == nil {
		return
	}

	c.stopTimerLocked(sess)
	if err := sess.player.Pause(); err != nil {
		c.logger.Warn("failed to pause replaced session", "track", sess.trackID, "err", err)
	}
	c.current = nil
}

// armTimerLocked arms the one-shot interruption timer for a session.
func (c *Controller) armTimerLocked(sess *playSession) {
	c.stopTimerLocked(sess)
	sess.timer = time.AfterFunc(c.previewLimit, func() {
		c.interrupt(sess)
	})
}

func (c *Controller) stopTimerLocked(sess *playSession) {
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
}

// interrupt fires when the preview limit elapses: playback pauses and the
// continuation decision point is surfaced to the display layer. The
// session stays alive; resuming behaves like Paused → Playing.
func (c *Controller) interrupt(sess *playSession) {
	c.mu.Lock()

	// A fire racing a teardown or pause is stale and ignored.
	if c.current != sess || sess.state != Playing {
		c.mu.Unlock()
		return
	}

	if err := sess.player.Pause(); err != nil {
		c.logger.Warn("failed to pause interrupted session", "track", sess.trackID, "err", err)
	}
	sess.state = Interrupted

	var prompt *Prompt
	if state, ok := c.store.Track(sess.trackID); ok {
		prompt = &Prompt{Track: state, Links: state.PlatformLinks()}
	}
	handler := c.onInterrupt
	c.mu.Unlock()

	c.logger.Info("preview limit reached", "track", sess.trackID)
	if handler != nil && prompt != nil {
		handler(*prompt)
	}
}

// incrementLocked issues the session's single play-count increment.
//
// The identity gate is consulted here, immediately before the mutation.
// Guests are hard-gated: no identity means no increment, not a deferred
// one. The incremented flag is set when the attempt is issued; failures
// roll their deltas back but are never retried, and they never touch
// playback itself.
func (c *Controller) incrementLocked(ctx context.Context, sess *playSession) {
	if sess.incremented {
		return
	}

	ident := c.gate.Current()
	if ident == nil {
		c.logger.Debug("guest playback, skipping play count", "track", sess.trackID)
		return
	}
	sess.incremented = true

	intent := engage.Intent{Kind: engage.PlayIncrement, Key: sess.trackID, Delta: 1, UserDelta: 1}
	sessionID := sess.id
	trackID := sess.trackID
	userID := ident.UserID
	token := ident.Token.AccessToken

	outcome, err := c.engine.Apply(ctx, intent, func(ctx context.Context) (*engage.Authoritative, error) {
		res, err := c.api.IncrementPlay(ctx, trackID, userID, sessionID, token)
		if err != nil {
			return nil, err
		}
		return &engage.Authoritative{Count: res.PlayCount, UserCount: res.UserPlays}, nil
	})
	if err != nil {
		c.logger.Warn("play count increment not applied", "track", trackID, "err", err)
		return
	}

	go func() {
		for o := range outcome {
			if o.Result == engage.RolledBack {
				c.logger.Warn("play count increment lost", "track", trackID, "err", o.Err)
			}
			if c.onSettle != nil {
				c.onSettle(o)
			}
		}
	}()
}
