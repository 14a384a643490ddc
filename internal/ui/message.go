package ui

import (
	"time"

	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/playback"
)

// catalogLoadedMsg reports the initial catalog load.
type catalogLoadedMsg struct {
	err error
}

// outcomeMsg reports the settlement of an optimistic mutation.
type outcomeMsg struct {
	outcome engage.Outcome
}

// playStartedMsg reports the result of starting a playback session.
type playStartedMsg struct {
	trackID string
	err     error
}

// interruptMsg carries the preview-limit continuation prompt.
type interruptMsg struct {
	prompt playback.Prompt
}

// tickMsg drives the progress display and counter refresh.
type tickMsg time.Time
