package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes an engagement snapshot of the catalog to disk in the
// requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := tasks.ExportOpts{
		Format:    cmd.String("format"),
		OutputDir: cmd.String("output"),
		Refresh:   cmd.Bool("refresh"),
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message)
		}
	}()

	result, err := st.refresh.Export(ctx, progress, opts)
	close(progress)
	wg.Wait()

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("✓ Exported %s snapshot to %s\n", result.Format, result.OutputDirectory)
	for _, file := range result.Files {
		r.writePlain("  %s\n", file)
	}

	if result.Refresh != nil {
		r.writePlain("Refreshed %d entities before export (%d failed)\n",
			result.Refresh.RefreshedOK, result.Refresh.Failed)
	}

	return nil
}
