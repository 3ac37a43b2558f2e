package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// RunRecorder persists finished cycles.
type RunRecorder interface {
	Record(ctx context.Context, run *models.RunResult) error
}

// ReconcilerOpts configures a [Reconciler]. Source, Target and Pairs are required.
type ReconcilerOpts struct {
	Source *SourceReader
	Target *Target
	Pairs  []models.SyncPair

	// Prepare runs once at the start of every cycle, before any pair. It is where credentials are checked
	// and both stores are logged in; an error aborts the cycle.
	Prepare func(ctx context.Context) error

	Recorder RunRecorder
	Metrics  *SyncMetrics
	Logger   *log.Logger
}

// Reconciler mirrors unchecked source items into target lists, one pair at a time.
type Reconciler struct {
	source   *SourceReader
	target   *Target
	pairs    []models.SyncPair
	prepare  func(ctx context.Context) error
	recorder RunRecorder
	metrics  *SyncMetrics
	logger   *log.Logger
}

func NewReconciler(opts ReconcilerOpts) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Reconciler{
		source:   opts.Source,
		target:   opts.Target,
		pairs:    opts.Pairs,
		prepare:  opts.Prepare,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// Pairs returns the configured list pairs.
func (r *Reconciler) Pairs() []models.SyncPair {
	return r.pairs
}

// RunPair reconciles a single pair and never returns an error: every failure is reported in the result.
//
// An empty source list is not an error. A missing target list is.
func (r *Reconciler) RunPair(ctx context.Context, pair models.SyncPair, progress chan<- ProgressUpdate) (result models.PairResult) {
	result = models.PairResult{Pair: pair}
	logger := shared.WithLogger(r.logger, "source", pair.Source, "target", pair.Target)

	defer func() {
		if p := recover(); p != nil {
			logger.Error("pair aborted", "panic", p)
			result.Status = models.PairFailed
			result.Err = fmt.Sprint(p)
		}
	}()

	sendProgress(progress, fetchSourceUpdate(1, 4, pair))
	items := r.source.FetchUnchecked(ctx, pair.Source)
	if len(items) == 0 {
		logger.Info("No unchecked items to sync")
		result.Status = models.PairEmptySource
		return result
	}

	sendProgress(progress, resolveTargetUpdate(2, 4, pair))
	list, ok := r.target.FindList(ctx, pair.Target)
	if !ok {
		err := fmt.Errorf("%w: %s", shared.ErrListNotFound, pair.Target)
		logger.Error("Reminders list not found. Create it in the target store first.", "error", err)
		result.Status = models.PairTargetNotFound
		result.Err = err.Error()
		return result
	}

	existing := r.target.ExistingUncompletedTitles(ctx, list)
	sendProgress(progress, snapshotUpdate(3, 4, len(existing)))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			logger.Warn("cycle cancelled", "remaining", len(items)-i)
			result.Status = models.PairFailed
			result.Err = err.Error()
			return result
		}

		key := shared.Normalize(item)
		if _, found := existing[key]; found {
			continue
		}

		ok := r.target.AddTask(ctx, list, item)
		sendProgress(progress, addTaskUpdate(i+1, len(items), item, ok))
		if !ok {
			logger.Error("Failed to add task", "item", item)
			result.Failed++
			continue
		}
		result.Added++
		existing[key] = struct{}{}
	}

	result.Status = models.PairSynced
	logger.Info("List sync complete", "added", result.Added)
	return result
}

// Run executes one cycle: Prepare, then every pair in order. Pairs are isolated from each other's failures.
func (r *Reconciler) Run(ctx context.Context, progress chan<- ProgressUpdate) models.RunResult {
	run := models.RunResult{ID: shared.GenerateID(), StartedAt: time.Now().UTC()}

	if r.prepare != nil {
		sendProgress(progress, prepareUpdate())
		if err := r.prepare(ctx); err != nil {
			r.logger.Error("Skipping this run", "error", err)
			run.Err = err.Error()
			r.finish(ctx, &run, progress)
			return run
		}
	}

	for _, pair := range r.pairs {
		result := r.RunPair(ctx, pair, progress)
		run.Pairs = append(run.Pairs, result)
		run.TotalAdded += result.Added
	}

	r.logger.Info("All lists sync complete", "added", run.TotalAdded, "lists", len(r.pairs))
	r.finish(ctx, &run, progress)
	return run
}

func (r *Reconciler) finish(ctx context.Context, run *models.RunResult, progress chan<- ProgressUpdate) {
	run.FinishedAt = time.Now().UTC()
	r.metrics.RecordRun(ctx, run, run.Duration())

	if r.recorder != nil {
		if err := r.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
			r.logger.Warn("failed to record run history", "run", run.ID, "error", err)
		}
	}

	sendProgress(progress, summaryUpdate(run))
}
