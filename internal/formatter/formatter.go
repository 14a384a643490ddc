// package formatter renders library engagement snapshots to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/shared"
)

// Library is a point-in-time snapshot of the engagement store.
type Library struct {
	Items       []engage.ItemState  `json:"items"`
	Tracks      []engage.TrackState `json:"tracks"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// ItemsToCSV converts item snapshots to CSV with columns: ID, Title, Likes, Liked
func ItemsToCSV(items []engage.ItemState) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Likes", "Liked"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ItemID,
			item.Title,
			strconv.Itoa(item.LikeCount),
			strconv.FormatBool(item.ViewerHasLiked),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts track snapshots to CSV with columns: ID, Title, Artist, Duration, Plays, YourPlays
func TracksToCSV(tracks []engage.TrackState) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Duration", "Plays", "YourPlays"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.TrackID,
			track.Title,
			track.Artist,
			FormatDuration(track.DurationSecs),
			strconv.Itoa(track.PlayCount),
			strconv.Itoa(track.UserPlays),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a library snapshot as a Markdown report.
func ToMarkdown(lib *Library) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Library Engagement\n\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", lib.GeneratedAt.Format(time.RFC3339)))

	buf.WriteString(fmt.Sprintf("## Items (%d)\n\n", len(lib.Items)))
	for _, item := range lib.Items {
		liked := ""
		if item.ViewerHasLiked {
			liked = " (liked)"
		}
		buf.WriteString(fmt.Sprintf("- **%s** - %d likes%s\n", item.Title, item.LikeCount, liked))
	}

	buf.WriteString(fmt.Sprintf("\n## Tracks (%d)\n\n", len(lib.Tracks)))
	for i, track := range lib.Tracks {
		duration := FormatDuration(track.DurationSecs)
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s] - %d plays", i+1, track.Artist, track.Title, duration, track.PlayCount))
		if track.UserPlays > 0 {
			buf.WriteString(fmt.Sprintf(" (%d yours)", track.UserPlays))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ToText renders a library snapshot as plain text.
func ToText(lib *Library) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Items: %d\n", len(lib.Items)))
	for _, item := range lib.Items {
		buf.WriteString(fmt.Sprintf("  %s [%d likes]\n", item.Title, item.LikeCount))
	}

	buf.WriteString(fmt.Sprintf("Tracks: %d\n", len(lib.Tracks)))
	for i, track := range lib.Tracks {
		buf.WriteString(fmt.Sprintf("  %d. %s - %s [%d plays]\n", i+1, track.Artist, track.Title, track.PlayCount))
	}

	return buf.Bytes(), nil
}

// FormatDuration renders a duration in seconds as m:ss.
func FormatDuration(secs int) string {
	if secs <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile  string
	TracksFile string
}

// WriteCSVExport writes a library snapshot as a pair of CSV files:
// {base}_items.csv and {base}_tracks.csv.
func WriteCSVExport(lib *Library, basePath string) (*CSVExportResult, error) {
	itemData, err := ItemsToCSV(lib.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to generate items CSV: %w", err)
	}
	trackData, err := TracksToCSV(lib.Tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tracks CSV: %w", err)
	}

	itemsFile := basePath + "_items.csv"
	if err := os.WriteFile(itemsFile, itemData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write items CSV: %w", err)
	}

	tracksFile := basePath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, trackData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write tracks CSV: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, TracksFile: tracksFile}, nil
}

// WriteMarkdownExport writes a library snapshot as {dir}/README.md.
func WriteMarkdownExport(lib *Library, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := ToMarkdown(lib)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport writes a library snapshot to a plain text file.
func WriteTextExport(lib *Library, path string) (string, error) {
	data, err := ToText(lib)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes a library snapshot as indented JSON.
func WriteJSONExport(lib *Library, path string) (string, error) {
	data, err := shared.MarshalJSON(lib, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}
