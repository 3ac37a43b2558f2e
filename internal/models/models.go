package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	GetID() string        // GetID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid
}

// SyncPair maps a source list title to a target list name.
type SyncPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (p SyncPair) String() string {
	return fmt.Sprintf("%s -> %s", p.Source, p.Target)
}

// SourceItem is one checklist entry in the source store.
type SourceItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Eligible reports whether the item should be mirrored: non-empty text and unchecked.
func (i SourceItem) Eligible() bool {
	return !i.Checked && strings.TrimSpace(i.Text) != ""
}

// SourceList is a titled checklist in the source store.
type SourceList struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Items []SourceItem `json:"items"`
}

// Unchecked returns the trimmed text of every eligible item in native order.
func (l SourceList) Unchecked() []string {
	texts := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		if item.Eligible() {
			texts = append(texts, strings.TrimSpace(item.Text))
		}
	}
	return texts
}

// PairStatus describes how a single pair finished within a cycle.
type PairStatus string

const (
	PairSynced         PairStatus = "synced"
	PairEmptySource    PairStatus = "empty_source"
	PairTargetNotFound PairStatus = "target_not_found"
	PairFailed         PairStatus = "failed"
)

// PairResult is the outcome of reconciling one [SyncPair].
type PairResult struct {
	Pair   SyncPair   `json:"pair"`
	Status PairStatus `json:"status"`
	Added  int        `json:"added"`
	Failed int        `json:"failed"`
	Err    string     `json:"error,omitempty"`
}

// RunResult is one reconciliation cycle across every configured pair.
type RunResult struct {
	ID         string       `json:"id"`
	Sequence   int          `json:"sequence"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Pairs      []PairResult `json:"pairs"`
	TotalAdded int          `json:"total_added"`
	Err        string       `json:"error,omitempty"`
}

func (r *RunResult) GetID() string        { return r.ID }
func (r *RunResult) CreatedAt() time.Time { return r.StartedAt }

// Validate checks that the run has an identifier and a coherent time range.
func (r *RunResult) Validate() error {
	if r.ID == "" {
		return errors.New("run id is required")
	}
	if r.StartedAt.IsZero() {
		return errors.New("run start time is required")
	}
	if !r.FinishedAt.IsZero() && r.FinishedAt.Before(r.StartedAt) {
		return errors.New("run finished before it started")
	}
	return nil
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
