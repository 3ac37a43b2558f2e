package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/desertthunder/listsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive terminal UI over the source lists.
//
// Syncing from the UI is only offered when the target backend can be built.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	// Logs would garble the alt screen.
	fileLogger, closeLog, err := shared.NewFileLogger(filepath.Join(os.TempDir(), "listsync-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closeLog()
	if err := shared.SetLogLevel(fileLogger, r.config.Log.Level); err != nil {
		fileLogger.Warn("unknown log level", "level", r.config.Log.Level)
	}
	r.SetLogger(fileLogger)

	notes := r.sourceStore()
	if err := r.loginSource(ctx, notes); err != nil {
		return err
	}
	reader := engine.NewSourceReader(notes, shared.WithLogger(r.logger, "component", "source"))

	var sync ui.SyncFunc
	if reconciler, err := r.newReconciler(ctx, nil, nil); err != nil {
		r.logger.Warn("sync disabled in browser", "error", err)
	} else {
		sync = func(ctx context.Context, progress chan<- engine.ProgressUpdate) models.RunResult {
			return reconciler.Run(ctx, progress)
		}
	}

	p := tea.NewProgram(ui.NewModel(ctx, reader, sync), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
