package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/server"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs a local counter service for development and integration
// testing. The --seed flag loads demo items and tracks plus a demo token
// ("demo-token" for user "demo") so counted plays work out of the box.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}
	dbPath := cmd.String("db")

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open server database: %w", err)
	}
	defer db.Close()

	// An in-memory database must stay on a single connection: each pooled
	// connection would otherwise see its own empty database.
	if dbPath == ":memory:" {
		shared.ConfigureDatabase(db, 1, 1)
	}

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	handler := server.NewCounterHandler(db, r.logger)

	if cmd.Bool("seed") {
		if err := seedCounterData(db); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		if err := handler.RegisterToken("demo-token", "demo"); err != nil {
			return fmt.Errorf("failed to register demo token: %w", err)
		}
		r.logger.Info("seeded demo catalog", "token", "demo-token", "user", "demo")
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Use(server.RateLimitMiddleware(100, 200))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("counter service listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// seedCounterData loads a small demo catalog into the server database.
func seedCounterData(db *sql.DB) error {
	now := time.Now()

	items := []struct {
		id, title string
		likes     int
	}{
		{"item-sunrise", "Sunrise Set", 12},
		{"item-late-night", "Late Night Mix", 4},
		{"item-b-sides", "B-Sides", 0},
	}
	for _, item := range items {
		sequence, err := repositories.NextSequence(db, "items")
		if err != nil {
			return err
		}
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO items (id, sequence, title, like_count, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.id, sequence, item.title, item.likes, now, now,
		); err != nil {
			return err
		}
	}

	tracks := []struct {
		id, title, artist, audioURL string
		durationSecs, plays         int
		spotifyURL, appleURL        string
	}{
		{"track-opener", "Opener", "The Demo Band", "https://cdn.example.com/opener.mp3", 185, 40,
			"https://open.spotify.com/track/opener", "https://music.apple.com/track/opener"},
		{"track-closer", "Closer", "The Demo Band", "https://cdn.example.com/closer.mp3", 230, 18,
			"https://open.spotify.com/track/closer", ""},
	}
	for _, track := range tracks {
		sequence, err := repositories.NextSequence(db, "tracks")
		if err != nil {
			return err
		}
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO tracks (id, sequence, title, artist, audio_url, duration_secs, play_count, spotify_url, apple_url, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			track.id, sequence, track.title, track.artist, track.audioURL, track.durationSecs, track.plays,
			track.spotifyURL, track.appleURL, now, now,
		); err != nil {
			return err
		}
	}

	return nil
}
