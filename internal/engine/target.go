package engine

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
	"golang.org/x/time/rate"
)

// Target wraps a reminders store with shape-agnostic lookups and the write strategies used to add tasks.
type Target struct {
	store   services.RemindersStore
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewTarget creates a Target over store. writesPerSecond paces task creation; zero or less disables pacing.
func NewTarget(store services.RemindersStore, writesPerSecond float64, logger *log.Logger) *Target {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if writesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(writesPerSecond), 1)
	}

	return &Target{store: store, limiter: limiter, logger: logger}
}

// FindList returns the first list whose title matches name ignoring case and surrounding whitespace.
//
// Mappings are searched in sorted key order. Absence, including a failed lookup, is (nil, false).
func (t *Target) FindList(ctx context.Context, name string) (any, bool) {
	raw, err := t.store.Lists(ctx)
	if err != nil {
		t.logger.Warn("Could not access reminders lists", "error", err)
		return nil, false
	}

	lists, ok := elements(raw)
	if !ok || len(lists) == 0 {
		t.logger.Warn("Could not access reminders lists; no lists returned")
		return nil, false
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, list := range lists {
		title := Title(list)
		if title != "" && strings.ToLower(strings.TrimSpace(title)) == want {
			return list, true
		}
	}

	return nil, false
}
