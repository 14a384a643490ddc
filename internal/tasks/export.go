package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/shared"
)

// ExportOpts contains configuration for library snapshot exports.
type ExportOpts struct {
	Format    string // Export format: json, csv, markdown, txt
	OutputDir string // Base output directory (default: encore_export_{epoch})
	Refresh   bool   // Refresh counters from the service before exporting
}

// ExportResult summarizes a snapshot export.
type ExportResult struct {
	Format          string
	OutputDirectory string
	Files           []string
	Refresh         *RefreshResult // populated when opts.Refresh is set
}

// Export writes the current library engagement snapshot to disk in the
// requested format, optionally refreshing counters from the service first.
func (e *RefreshEngine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("encore_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = "json"
	}

	result := &ExportResult{Format: opts.Format, OutputDirectory: opts.OutputDir}

	if opts.Refresh {
		refreshed, err := e.Refresh(ctx, prog, RefreshOpts{})
		if err != nil {
			return nil, err
		}
		result.Refresh = refreshed
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lib := &formatter.Library{
		Items:       e.store.Items(),
		Tracks:      e.store.Tracks(),
		GeneratedAt: time.Now(),
	}

	e.sendProgress(prog, writingSnapshotUpdate(1, 1, opts.Format))

	switch opts.Format {
	case "csv":
		res, err := formatter.WriteCSVExport(lib, filepath.Join(opts.OutputDir, "library"))
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		result.Files = []string{res.ItemsFile, res.TracksFile}

	case "markdown":
		mdFile, err := formatter.WriteMarkdownExport(lib, opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		result.Files = []string{mdFile}

	case "txt":
		txtFile, err := formatter.WriteTextExport(lib, filepath.Join(opts.OutputDir, "library.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		result.Files = []string{txtFile}

	case "json":
		jsonFile, err := formatter.WriteJSONExport(lib, filepath.Join(opts.OutputDir, "library.json"))
		if err != nil {
			return nil, fmt.Errorf("JSON export failed: %w", err)
		}
		result.Files = []string{jsonFile}

	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}

	e.sendProgress(prog, snapshotWrittenUpdate(1, 1, result.Files))
	return result, nil
}
