package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/formatter"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Lists prints the source lists in the requested format, or writes them to --output.
func (r *Runner) Lists(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	notes := r.sourceStore()
	if err := r.loginSource(ctx, notes); err != nil {
		return err
	}

	reader := engine.NewSourceReader(notes, shared.WithLogger(r.logger, "component", "source"))
	lists, err := reader.Lists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch lists: %w", err)
	}

	if name := cmd.String("name"); name != "" {
		lists = filterLists(lists, name)
		if len(lists) == 0 {
			return fmt.Errorf("%w: %s", shared.ErrListNotFound, name)
		}
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteFile(format, lists, output)
		if err != nil {
			return err
		}
		r.logger.Info("lists exported", "path", path, "count", len(lists))
		return nil
	}

	return formatter.Write(r.output, format, lists)
}

func filterLists(lists []models.SourceList, name string) []models.SourceList {
	key := shared.Normalize(name)
	var matched []models.SourceList
	for _, l := range lists {
		if shared.Normalize(l.Title) == key {
			matched = append(matched, l)
		}
	}
	return matched
}
