package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/formatter"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints recorded reconciliation cycles, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	if repo == nil {
		return fmt.Errorf("%w: database.path is empty, run history is disabled", shared.ErrMissingConfig)
	}

	if keep := cmd.Int("keep"); keep > 0 {
		deleted, err := repo.Prune(ctx, int(keep))
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		r.logger.Info("pruned history", "deleted", deleted, "kept", keep)
	}

	runs, err := repo.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	if len(runs) == 0 {
		return r.writePlain("No cycles recorded yet\n")
	}
	return formatter.WriteRuns(r.output, runs)
}
