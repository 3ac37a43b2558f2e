package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 30 * time.Second
	serverIdleTimeout      = 60 * time.Second
	defaultGracefulTimeout = 10 * time.Second
)

// Sync runs the reconciler immediately and then on the configured interval until interrupted.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	metrics, metricsHandler, err := r.newMetrics()
	if err != nil {
		return err
	}

	unlock, err := r.lockSession()
	if err != nil {
		return err
	}
	defer unlock()

	reconciler, err := r.newReconciler(ctx, recorderFor(repo), metrics)
	if err != nil {
		return err
	}

	if cmd.Bool("once") {
		run := reconciler.Run(ctx, nil)
		if cmd.Bool("json") {
			if err := r.writeJSON(run, true); err != nil {
				return err
			}
		} else {
			r.printRun(run)
		}
		if run.Err != "" {
			return fmt.Errorf("cycle skipped: %s", run.Err)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		g.Go(func() error {
			return runHTTPServer(gctx, newHTTPServer(r.config.Metrics.Addr, mux), r.logger)
		})
	}
	g.Go(func() error {
		r.schedule(gctx, reconciler)
		return nil
	})
	return g.Wait()
}

// schedule blocks running cycles until ctx is cancelled.
func (r *Runner) schedule(ctx context.Context, reconciler *engine.Reconciler) {
	scheduler := &engine.Scheduler{Interval: r.config.Interval(), Logger: r.logger}
	scheduler.Start(ctx, func(ctx context.Context) {
		reconciler.Run(ctx, nil)
	})
}

func (r *Runner) printRun(run models.RunResult) {
	if run.Err != "" {
		r.writePlain("✗ Cycle skipped: %s\n", run.Err)
		return
	}
	for _, p := range run.Pairs {
		switch p.Status {
		case models.PairSynced:
			r.writePlain("✓ %s: %d added", p.Pair, p.Added)
			if p.Failed > 0 {
				r.writePlain(", %d failed", p.Failed)
			}
			r.writePlain("\n")
		case models.PairEmptySource:
			r.writePlain("• %s: nothing to sync\n", p.Pair)
		default:
			r.writePlain("✗ %s: %s\n", p.Pair, p.Err)
		}
	}
	r.writePlain("Total added: %d (%s)\n", run.TotalAdded, run.Duration().Round(time.Millisecond))
}

// newMetrics builds sync metrics when a metrics address is configured.
func (r *Runner) newMetrics() (*engine.SyncMetrics, http.Handler, error) {
	if r.config.Metrics.Addr == "" {
		return nil, nil, nil
	}

	provider, handler, err := shared.NewMeterProvider()
	if err != nil {
		return nil, nil, err
	}
	metrics, err := engine.NewSyncMetrics(provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}
	return metrics, handler, nil
}

// lockSession guards the reminders session directory against a second process.
func (r *Runner) lockSession() (func(), error) {
	dir := r.config.Reminders.SessionDir
	backend := r.config.Target.Backend
	if dir == "" || (backend != "" && backend != shared.BackendReminders) {
		return func() {}, nil
	}

	unlock, err := shared.LockDir(dir)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := unlock(); err != nil {
			r.logger.Warn("failed to release session lock", "error", err)
		}
	}, nil
}

func recorderFor(repo *repositories.RunRepository) engine.RunRecorder {
	if repo == nil {
		return nil
	}
	return repo
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func runHTTPServer(ctx context.Context, server *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...", "addr", server.Addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server shutdown complete", "addr", server.Addr)
	return nil
}
