package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/engage"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// LikeToggle flips the viewer's like on an item. The optimistic result is
// reported immediately and the settled counts after the counter service
// responds.
func (r *Runner) LikeToggle(ctx context.Context, cmd *cli.Command) error {
	itemID := cmd.StringArg("id")
	if itemID == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.refresh.Load(ctx, nil); err != nil {
		return err
	}

	outcome, err := st.like.Toggle(ctx, itemID)
	if err != nil {
		return err
	}

	o := <-outcome
	state, ok := st.store.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}

	if o.Result == engage.RolledBack {
		return fmt.Errorf("like not applied: %w", o.Err)
	}

	mark := "♡"
	if state.ViewerHasLiked {
		mark = "♥"
	}
	return r.writePlain("%s %s now has %d likes\n", mark, state.Title, state.LikeCount)
}
