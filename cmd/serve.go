package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/server"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Serve runs the control surface, its cache refresher and optionally the reconciliation loop.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = int(port)
	}

	notes := r.sourceStore()
	if err := r.loginSource(ctx, notes); err != nil {
		return err
	}

	reader := engine.NewSourceReader(notes, shared.WithLogger(r.logger, "component", "source"))
	cache := server.NewListCache(reader.FetchAll, shared.WithLogger(r.logger, "component", "cache"))
	if err := cache.Refresh(ctx); err != nil {
		r.logger.Warn("initial list load failed; serving an empty cache", "error", err)
	} else {
		r.logger.Info("Loaded lists", "count", len(cache.All()))
	}

	provider, metricsHandler, err := shared.NewMeterProvider()
	if err != nil {
		return err
	}

	control := server.NewControlHandler(reader, cache, r.config.ClearableLists(), r.logger)
	router := server.NewServer(control,
		server.WithMiddlewares(server.DefaultMiddlewares(r.logger)...),
		server.WithMetricsHandler(metricsHandler),
	)

	var reconciler *engine.Reconciler
	if cmd.Bool("with-sync") {
		repo, closeDB, err := r.openHistory()
		if err != nil {
			return err
		}
		defer closeDB()

		unlock, err := r.lockSession()
		if err != nil {
			return err
		}
		defer unlock()

		metrics, err := engine.NewSyncMetrics(provider)
		if err != nil {
			return fmt.Errorf("failed to create sync metrics: %w", err)
		}
		if reconciler, err = r.newReconciler(ctx, recorderFor(repo), metrics); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runHTTPServer(gctx, newHTTPServer(r.config.ServerAddr(), router), r.logger)
	})
	g.Go(func() error {
		return cache.Run(gctx, r.config.RefreshInterval())
	})
	if reconciler != nil {
		g.Go(func() error {
			r.schedule(gctx, reconciler)
			return nil
		})
	}

	return g.Wait()
}

// loginSource validates note store credentials and logs in.
func (r *Runner) loginSource(ctx context.Context, notes services.NotesStore) error {
	if err := r.config.ValidateSource(); err != nil {
		return err
	}
	if auth, ok := notes.(services.Authenticator); ok {
		if err := auth.Authenticate(ctx); err != nil {
			return fmt.Errorf("%s login failed: %w", auth.Name(), err)
		}
	}
	return nil
}
