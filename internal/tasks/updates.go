package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListItems Phase = iota
	ListTracks
	RefreshEntities
	WriteSnapshot
)

func (p Phase) String() string {
	switch p {
	case ListItems:
		return "list_items"
	case ListTracks:
		return "list_tracks"
	case RefreshEntities:
		return "refresh_entities"
	case WriteSnapshot:
		return "write_snapshot"
	default:
		return ""
	}
}

func listItemsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListItems,
		Step:    step,
		Total:   total,
		Message: "Fetching items from counter service...",
	}
}

func listTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListTracks,
		Step:    step,
		Total:   total,
		Message: "Fetching tracks from counter service...",
	}
}

func entityRefreshedUpdate(step, total int, res EntityRefreshResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshEntities,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Title),
		Data:    res,
	}
}

func entityFailedUpdate(step, total int, res EntityRefreshResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshEntities,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.ID, res.Error),
		Data:    res,
	}
}

func writingSnapshotUpdate(step, total int, format string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing %s snapshot...", format),
	}
}

func snapshotWrittenUpdate(step, total int, files []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Wrote %d file(s)", len(files)),
		Data:    files,
	}
}
