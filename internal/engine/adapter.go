package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/listsync/internal/services"
)

// addStrategy is one way of creating a task. applies sees the error returned by the previous strategy.
type addStrategy struct {
	name    string
	applies func(store services.RemindersStore, list any, prev error) bool
	add     func(ctx context.Context, store services.RemindersStore, list any, title string) error
}

var addStrategies = []addStrategy{
	{
		name: "add-by-id",
		applies: func(store services.RemindersStore, list any, _ error) bool {
			_, ok := store.(services.Adder)
			return ok && ListIdentifier(list) != ""
		},
		add: func(ctx context.Context, store services.RemindersStore, list any, title string) error {
			return store.(services.Adder).Add(ctx, services.AddRequest{Title: title, ListID: ListIdentifier(list)})
		},
	},
	{
		name: "add-by-name",
		applies: func(store services.RemindersStore, list any, prev error) bool {
			_, ok := store.(services.Adder)
			if !ok || Title(list) == "" {
				return false
			}
			return errors.Is(prev, services.ErrArgumentShape) || ListIdentifier(list) == ""
		},
		add: func(ctx context.Context, store services.RemindersStore, list any, title string) error {
			return store.(services.Adder).Add(ctx, services.AddRequest{Title: title, ListName: Title(list)})
		},
	},
	{
		name: "create-resource",
		applies: func(store services.RemindersStore, _ any, _ error) bool {
			_, ok := store.(services.ResourceCreator)
			return ok
		},
		add: func(ctx context.Context, store services.RemindersStore, list any, title string) error {
			payload := map[string]any{"title": title}
			if id := ListIdentifier(list); id != "" {
				payload["list_id"] = id
			}
			return store.(services.ResourceCreator).Create(ctx, "tasks", payload)
		},
	},
}

// AddTask creates a task titled title in list, trying each applicable strategy in order until one
// succeeds. It reports false when every applicable strategy failed or none applied.
func (t *Target) AddTask(ctx context.Context, list any, title string) bool {
	var prev error
	attempted := false

	for _, s := range addStrategies {
		if !s.applies(t.store, list, prev) {
			continue
		}
		attempted = true

		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				t.logger.Error("write pacing interrupted", "title", title, "error", err)
				return false
			}
		}

		prev = safeAdd(ctx, s, t.store, list, title)
		if prev == nil {
			t.logger.Debug("task added", "title", title, "strategy", s.name)
			return true
		}
		t.logger.Warn("add strategy failed", "title", title, "strategy", s.name, "error", prev)
	}

	if !attempted {
		t.logger.Error("Unable to add task with the available reminders API", "title", title)
	}
	return false
}

func safeAdd(ctx context.Context, s addStrategy, store services.RemindersStore, list any, title string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", s.name, p)
		}
	}()
	return s.add(ctx, store, list, title)
}
