package main

import (
	"context"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/urfave/cli/v3"
)

// ListItems fetches the item catalog and prints like counts.
func (r *Runner) ListItems(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.refresh.Load(ctx, nil); err != nil {
		return err
	}

	items := st.store.Items()
	if useJSON {
		return r.writeJSON(items, pretty)
	}

	r.writePlain("Items (%d)\n\n", len(items))
	for _, item := range items {
		mark := " "
		if item.ViewerHasLiked {
			mark = "♥"
		}
		r.writePlain("%s %4d  %s (%s)\n", mark, item.LikeCount, item.Title, item.ItemID)
	}
	return nil
}

// ListTracks fetches the track catalog and prints play counts.
func (r *Runner) ListTracks(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.refresh.Load(ctx, nil); err != nil {
		return err
	}

	tracks := st.store.Tracks()
	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	r.writePlain("Tracks (%d)\n\n", len(tracks))
	for _, track := range tracks {
		r.writePlain("%4d  %s - %s [%s] (%d yours)\n",
			track.PlayCount, track.Artist, track.Title,
			formatter.FormatDuration(track.DurationSecs), track.UserPlays)
	}
	return nil
}
