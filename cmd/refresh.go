package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Refresh re-fetches authoritative counts for every item and track,
// writing them through to the local cache and streaming progress lines.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := tasks.RefreshOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		SkipCache:  cmd.Bool("skip-cache"),
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := st.refresh.Refresh(ctx, progress, opts)
	close(progress)
	wg.Wait()

	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	r.writePlainln("✓ Refreshed %d of %d entities (%d failed)",
		result.RefreshedOK, result.TotalItems+result.TotalTracks, result.Failed)

	for _, entity := range result.EntityResults {
		if entity.Error != nil {
			r.writePlain("  ✗ %s: %v\n", entity.ID, entity.Error)
		}
	}

	return nil
}
