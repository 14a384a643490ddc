package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/playback"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/session"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	counter    *services.CounterService
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Counter    *services.CounterService
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Counter == nil {
		opts.Counter = services.NewCounterService(opts.Config.Service.BaseURL, opts.HTTPClient)
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Service.BaseURL, opts.HTTPClient)
	}

	return &Runner{
		config:     opts.Config,
		counter:    opts.Counter,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, likeCommand, playCommand, itemsCommand, tracksCommand,
		refreshCommand, exportCommand, serveCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// stack is the per-command dependency graph built over the local database:
// session gate, in-memory engagement store, settlement engine, and the
// controllers that drive them.
type stack struct {
	db      *sql.DB
	counter *services.CounterService
	gate    *session.Gate
	store   *engage.Store
	engine  *engage.Engine
	like    *engage.LikeController
	refresh *tasks.RefreshEngine
}

// buildStack opens the configured database and wires the engagement core.
func (r *Runner) buildStack() (*stack, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gate := session.NewGate(repositories.NewSessionRepository(db), shared.WithLogger(r.logger, "component", "session"))
	if ident := gate.Current(); ident != nil {
		r.counter.SetViewer(ident.UserID)
	}
	store := engage.NewStore()
	engageLogger := shared.WithLogger(r.logger, "component", "engage")
	engine := engage.NewEngine(store, gate, engageLogger)
	like := engage.NewLikeController(store, engine, r.counter, gate, engageLogger)
	cache := repositories.NewCounterCacheAdapter(
		repositories.NewItemRepository(db),
		repositories.NewTrackRepository(db),
	)
	refresh := tasks.NewRefreshEngine(r.counter, cache, store)

	return &stack{
		db:      db,
		counter: r.counter,
		gate:    gate,
		store:   store,
		engine:  engine,
		like:    like,
		refresh: refresh,
	}, nil
}

func (s *stack) Close() error {
	return s.db.Close()
}

// newPlayer builds a playback controller over the stack using clock-backed
// players, with track durations resolved from the catalog store.
func (s *stack) newPlayer(limit time.Duration, logger *log.Logger, onInterrupt func(playback.Prompt), onSettle func(engage.Outcome)) *playback.Controller {
	provider := playback.ClockProvider{
		Lookup: func(audioURL string) time.Duration {
			for _, t := range s.store.Tracks() {
				if t.AudioURL == audioURL {
					return time.Duration(t.DurationSecs) * time.Second
				}
			}
			return 0
		},
	}

	return playback.NewController(playback.ControllerOpts{
		Provider:     provider,
		API:          s.counter,
		Gate:         s.gate,
		Engine:       s.engine,
		Store:        s.store,
		Logger:       logger,
		PreviewLimit: limit,
		OnInterrupt:  onInterrupt,
		OnSettle:     onSettle,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
