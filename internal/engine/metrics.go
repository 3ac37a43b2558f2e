package engine

import (
	"context"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/desertthunder/listsync/sync"

// SyncMetrics holds the OpenTelemetry instruments for reconciliation cycles
type SyncMetrics struct {
	cycleDuration metric.Float64Histogram
	tasksAdded    metric.Int64Counter
	addFailures   metric.Int64Counter
	pairOutcomes  metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	cycleDuration, err := meter.Float64Histogram(
		"listsync_cycle_duration_seconds",
		metric.WithDescription("Duration of reconciliation cycles in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	tasksAdded, err := meter.Int64Counter(
		"listsync_tasks_added_total",
		metric.WithDescription("Tasks created in the target store"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	addFailures, err := meter.Int64Counter(
		"listsync_task_add_failures_total",
		metric.WithDescription("Tasks that could not be created"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	pairOutcomes, err := meter.Int64Counter(
		"listsync_pairs_total",
		metric.WithDescription("List pairs processed, by status"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		cycleDuration: cycleDuration,
		tasksAdded:    tasksAdded,
		addFailures:   addFailures,
		pairOutcomes:  pairOutcomes,
	}, nil
}

// RecordRun records the duration of a cycle and the outcome of each of its pairs
func (m *SyncMetrics) RecordRun(ctx context.Context, run *models.RunResult, duration time.Duration) {
	if m == nil {
		return
	}

	m.cycleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", run.Err == "")))

	for _, p := range run.Pairs {
		attrs := metric.WithAttributes(attribute.String("target", p.Pair.Target))
		m.tasksAdded.Add(ctx, int64(p.Added), attrs)
		m.addFailures.Add(ctx, int64(p.Failed), attrs)
		m.pairOutcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("target", p.Pair.Target),
			attribute.String("status", string(p.Status)),
		))
	}
}
