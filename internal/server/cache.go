package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/shared"
)

// FetchFunc loads every list of the source store keyed by title.
type FetchFunc func(ctx context.Context) (map[string][]string, error)

type snapshot struct {
	lists       map[string][]string
	refreshedAt time.Time
}

// ListCache holds an immutable snapshot of the source lists.
//
// Readers never block. Rebuilds are serialized, and a snapshot is only replaced by a successful fetch.
type ListCache struct {
	fetch   FetchFunc
	logger  *log.Logger
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

func NewListCache(fetch FetchFunc, logger *log.Logger) *ListCache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	c := &ListCache{fetch: fetch, logger: logger}
	c.current.Store(&snapshot{lists: map[string][]string{}})
	return c
}

// Refresh fetches all lists and swaps in the new snapshot.
func (c *ListCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lists, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error("Error refreshing lists; keeping previous snapshot", "error", err)
		return err
	}
	if lists == nil {
		lists = map[string][]string{}
	}

	c.current.Store(&snapshot{lists: lists, refreshedAt: time.Now().UTC()})
	c.logger.Info("Refreshed lists", "count", len(lists))
	return nil
}

// All returns the current snapshot. Callers must not modify it.
func (c *ListCache) All() map[string][]string {
	return c.current.Load().lists
}

// Get returns the cached items of a list. An exact title match wins over a normalized one.
func (c *ListCache) Get(name string) ([]string, bool) {
	lists := c.All()
	if items, ok := lists[name]; ok {
		return items, true
	}

	want := shared.Normalize(name)
	for title, items := range lists {
		if shared.Normalize(title) == want {
			return items, true
		}
	}
	return nil, false
}

// RefreshedAt reports when the snapshot was last rebuilt. It is zero before the first successful refresh.
func (c *ListCache) RefreshedAt() time.Time {
	return c.current.Load().refreshedAt
}

// Run refreshes the cache every interval until ctx is cancelled.
func (c *ListCache) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("Scheduled list refresh", "every", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}
