package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/shared"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultTick     = time.Second
)

// Scheduler runs a job immediately and then each time Interval has elapsed since the previous start,
// checking on every Tick. Runs never overlap: a job that overruns delays the next one.
type Scheduler struct {
	Interval time.Duration
	Tick     time.Duration
	Logger   *log.Logger
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, job func(context.Context)) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	tick := s.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	logger := s.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	logger.Info("Starting initial sync...")
	lastStart := time.Now()
	job(ctx)

	logger.Info("Scheduling sync", "every", interval)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			if now.Sub(lastStart) < interval {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			lastStart = now
			job(ctx)
		}
	}
}
