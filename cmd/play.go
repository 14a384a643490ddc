package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play runs a one-shot playback session for a track. Signed-in sessions
// count a single play; guest sessions play without telemetry. A failed
// increment is reported but never fails the command.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.StringArg("id")
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.refresh.Load(ctx, nil); err != nil {
		return err
	}

	guest := st.gate.Current() == nil
	settled := make(chan engage.Outcome, 1)
	player := st.newPlayer(r.config.Playback.PreviewLimit(), r.logger, nil, func(o engage.Outcome) {
		select {
		case settled <- o:
		default:
		}
	})

	if err := player.Start(ctx, trackID); err != nil {
		return err
	}
	defer player.Stop()

	state, _ := st.store.Track(trackID)

	if guest {
		return r.writePlain("▸ %s - %s (guest session, play not counted)\n", state.Artist, state.Title)
	}

	select {
	case o := <-settled:
		if o.Result == engage.RolledBack {
			r.logger.Warn("play not counted", "track", trackID, "err", o.Err)
		}
	case <-time.After(r.config.Service.Timeout() + time.Second):
		r.logger.Warn("play count settlement timed out", "track", trackID)
	}

	state, _ = st.store.Track(trackID)
	return r.writePlain("▸ %s - %s, %d plays (%d yours)\n", state.Artist, state.Title, state.PlayCount, state.UserPlays)
}
