package engine

import (
	"fmt"

	"github.com/desertthunder/listsync/internal/models"
)

// ProgressUpdate represents a progress event during a reconciliation cycle.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Cycle phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Cycle phase enumeration
type Phase int

const (
	Prepare Phase = iota
	FetchSource
	ResolveTarget
	Snapshot
	AddTasks
	Summary
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case FetchSource:
		return "fetch_source"
	case ResolveTarget:
		return "resolve_target"
	case Snapshot:
		return "snapshot"
	case AddTasks:
		return "add_tasks"
	case Summary:
		return "summary"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func prepareUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Prepare, Step: 1, Total: 1, Message: "Logging in to both stores..."}
}

func fetchSourceUpdate(step, total int, pair models.SyncPair) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading source list (%s)...", step, total, pair.Source),
	}
}

func resolveTargetUpdate(step, total int, pair models.SyncPair) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTarget,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Locating target list (%s)...", step, total, pair.Target),
	}
}

func snapshotUpdate(step, total, existing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Snapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %d open task(s) already present", step, total, existing),
	}
}

func addTaskUpdate(step, total int, title string, ok bool) ProgressUpdate {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   AddTasks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, title),
	}
}

func summaryUpdate(result *models.RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Summary,
		Step:    len(result.Pairs),
		Total:   len(result.Pairs),
		Message: fmt.Sprintf("Added %d new task(s) across %d list(s)", result.TotalAdded, len(result.Pairs)),
		Data:    result,
	}
}
