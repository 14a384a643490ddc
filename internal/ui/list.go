package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/formatter"
)

var (
	_ list.Item = itemEntry{}
	_ list.Item = trackEntry{}
)

// itemEntry wraps [engage.ItemState] to implement [list.Item].
type itemEntry struct {
	state engage.ItemState
}

func (i itemEntry) FilterValue() string { return i.state.Title }
func (i itemEntry) Title() string {
	if i.state.ViewerHasLiked {
		return fmt.Sprintf("♥ %s", i.state.Title)
	}
	return i.state.Title
}
func (i itemEntry) Description() string {
	return fmt.Sprintf("%d likes", i.state.LikeCount)
}

// trackEntry wraps [engage.TrackState] to implement [list.Item].
type trackEntry struct {
	state engage.TrackState
}

func (t trackEntry) FilterValue() string { return t.state.Title }
func (t trackEntry) Title() string       { return t.state.Title }
func (t trackEntry) Description() string {
	desc := fmt.Sprintf("%s • %s • %d plays", t.state.Artist, formatter.FormatDuration(t.state.DurationSecs), t.state.PlayCount)
	if t.state.UserPlays > 0 {
		desc = fmt.Sprintf("%s (%d yours)", desc, t.state.UserPlays)
	}
	return desc
}

func itemEntries(states []engage.ItemState) []list.Item {
	entries := make([]list.Item, len(states))
	for i, state := range states {
		entries[i] = itemEntry{state: state}
	}
	return entries
}

func trackEntries(states []engage.TrackState) []list.Item {
	entries := make([]list.Item, len(states))
	for i, state := range states {
		entries[i] = trackEntry{state: state}
	}
	return entries
}
