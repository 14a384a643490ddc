package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/encore/internal/engage"
	tu "github.com/desertthunder/encore/internal/testing"
)

func sampleLibrary() *Library {
	return &Library{
		Items: []engage.ItemState{
			{ItemID: "item1", Title: "First Post", LikeCount: 12, ViewerHasLiked: true},
			{ItemID: "item2", Title: "Second Post", LikeCount: 0, ViewerHasLiked: false},
		},
		Tracks: []engage.TrackState{
			{TrackID: "track1", Title: "Opener", Artist: "Band One", DurationSecs: 185, PlayCount: 40, UserPlays: 3},
			{TrackID: "track2", Title: "Closer", Artist: "Band Two", DurationSecs: 240, PlayCount: 7, UserPlays: 0},
		},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExporters(t *testing.T) {
	t.Run("ItemsToCSV", func(t *testing.T) {
		data, err := ItemsToCSV(sampleLibrary().Items)
		if err != nil {
			t.Fatalf("ItemsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Likes,Liked") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "item1,First Post,12,true") {
			t.Errorf("CSV missing item1 row, got: %s", output)
		}
		if !strings.Contains(output, "item2,Second Post,0,false") {
			t.Errorf("CSV missing item2 row, got: %s", output)
		}
	})

	t.Run("TracksToCSV", func(t *testing.T) {
		data, err := TracksToCSV(sampleLibrary().Tracks)
		if err != nil {
			t.Fatalf("TracksToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Artist,Duration,Plays,YourPlays") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "track1,Opener,Band One,3:05,40,3") {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		data, err := ToMarkdown(sampleLibrary())
		if err != nil {
			t.Fatalf("ToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Library Engagement") {
			t.Errorf("markdown missing title")
		}
		if !strings.Contains(output, "## Items (2)") {
			t.Errorf("markdown missing items section, got: %s", output)
		}
		if !strings.Contains(output, "**First Post** - 12 likes (liked)") {
			t.Errorf("markdown missing liked item line, got: %s", output)
		}
		if !strings.Contains(output, "1. Band One - Opener [3:05] - 40 plays (3 yours)") {
			t.Errorf("markdown missing track line, got: %s", output)
		}
		if strings.Contains(output, "(0 yours)") {
			t.Errorf("markdown should omit zero user plays")
		}
	})

	t.Run("ToText", func(t *testing.T) {
		data, err := ToText(sampleLibrary())
		if err != nil {
			t.Fatalf("ToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Items: 2") || !strings.Contains(output, "Tracks: 2") {
			t.Errorf("text missing counts, got: %s", output)
		}
		if !strings.Contains(output, "First Post [12 likes]") {
			t.Errorf("text missing item line, got: %s", output)
		}
	})

	t.Run("empty library", func(t *testing.T) {
		lib := &Library{GeneratedAt: time.Now()}
		if _, err := ItemsToCSV(lib.Items); err != nil {
			t.Errorf("ItemsToCSV on empty failed: %v", err)
		}
		data, err := ToText(lib)
		if err != nil {
			t.Fatalf("ToText on empty failed: %v", err)
		}
		if !strings.Contains(string(data), "Items: 0") {
			t.Errorf("unexpected empty output: %s", data)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{185, "3:05"},
		{3600, "60:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.secs); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		dir := t.TempDir()
		res, err := WriteCSVExport(sampleLibrary(), filepath.Join(dir, "library"))
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		for _, f := range []string{res.ItemsFile, res.TracksFile} {
			tu.AssertFileExists(t, f)
		}
		if !strings.HasSuffix(res.ItemsFile, "_items.csv") {
			t.Errorf("unexpected items file name: %s", res.ItemsFile)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "report")
		mdFile, err := WriteMarkdownExport(sampleLibrary(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if content := tu.MustReadFile(t, mdFile); !strings.Contains(content, "# Library Engagement") {
			t.Errorf("markdown file missing title")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library.txt")
		written, err := WriteTextExport(sampleLibrary(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected path %s, got %s", path, written)
		}
		tu.AssertFileExists(t, path)
	})

	t.Run("WriteJSONExport round trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library.json")
		if _, err := WriteJSONExport(sampleLibrary(), path); err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}

		var lib Library
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &lib); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(lib.Items) != 2 || len(lib.Tracks) != 2 {
			t.Errorf("unexpected round trip: %+v", lib)
		}
	})
}
