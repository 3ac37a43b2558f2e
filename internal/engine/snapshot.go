package engine

import (
	"context"

	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

// ExistingUncompletedTitles collects the normalized titles of uncompleted tasks in list.
//
// Tasks come from a list-scoped accessor when the handle has one, otherwise from the store-wide
// uncompleted accessor. Tasks whose list identifier differs from the list's are skipped; when either side
// lacks an identifier the task is kept. Without any reachable task source the set is empty.
func (t *Target) ExistingUncompletedTitles(ctx context.Context, list any) map[string]struct{} {
	titles := map[string]struct{}{}

	raw := t.listTasks(ctx, list)
	if raw == nil {
		if lister, ok := t.store.(services.UncompletedLister); ok {
			tasks, err := lister.Uncompleted(ctx)
			if err != nil {
				t.logger.Warn("store-wide task lookup failed", "error", err)
			} else {
				raw = tasks
			}
		}
	}

	tasks, ok := elements(raw)
	if !ok || len(tasks) == 0 {
		t.logger.Warn("Could not retrieve tasks for the reminders list; treating it as empty")
		return titles
	}

	listID := ListIdentifier(list)
	for _, task := range tasks {
		title := Title(task)
		if title == "" || isCompleted(task) {
			continue
		}
		if taskID := taskListIdentifier(task); listID != "" && taskID != "" && taskID != listID {
			continue
		}
		titles[shared.Normalize(title)] = struct{}{}
	}

	return titles
}

// listTasks returns the tasks from the first list-scoped accessor present on list. An accessor that fails
// is skipped; an accessor that returns nothing ends the search.
func (t *Target) listTasks(ctx context.Context, list any) any {
	for _, source := range listTaskSources {
		tasks, present, err := source(ctx, list)
		if !present {
			continue
		}
		if err != nil {
			t.logger.Debug("list task accessor failed", "error", err)
			continue
		}
		return tasks
	}
	return nil
}
