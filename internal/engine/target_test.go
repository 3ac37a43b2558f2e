package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
	tu "github.com/desertthunder/listsync/internal/testing"
)

func quietTarget(store services.RemindersStore) *Target {
	return NewTarget(store, 0, shared.NewLogger(io.Discard))
}

// listsOnly is a store with no optional capabilities.
type listsOnly struct {
	lists any
	err   error
}

func (s *listsOnly) Lists(context.Context) (any, error) { return s.lists, s.err }

type creatorStore struct {
	listsOnly
	created []map[string]any
	err     error
}

func (s *creatorStore) Create(_ context.Context, resource string, payload map[string]any) error {
	if resource != "tasks" {
		return fmt.Errorf("unexpected resource %s", resource)
	}
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, payload)
	return nil
}

type adderCreatorStore struct {
	creatorStore
	requests []services.AddRequest
	addErr   error
	panics   bool
}

func (s *adderCreatorStore) Add(_ context.Context, req services.AddRequest) error {
	s.requests = append(s.requests, req)
	if s.panics {
		panic("boom")
	}
	return s.addErr
}

func TestFindList(t *testing.T) {
	ctx := context.Background()

	t.Run("Sequence Of Maps", func(t *testing.T) {
		store := tu.NewFakeReminders()
		store.AddList("g1", "Hardware")
		store.AddList("g2", "Groceries")

		list, ok := quietTarget(store).FindList(ctx, "  groceries ")
		if !ok {
			t.Fatal("expected list to be found")
		}
		if ListIdentifier(list) != "g2" {
			t.Errorf("expected g2, got %v", list)
		}
	})

	t.Run("Mapping In Sorted Key Order", func(t *testing.T) {
		store := &listsOnly{lists: map[string]any{
			"z": map[string]any{"guid": "z", "title": "Groceries"},
			"a": map[string]any{"guid": "a", "title": "GROCERIES"},
		}}

		list, ok := quietTarget(store).FindList(ctx, "Groceries")
		if !ok || ListIdentifier(list) != "a" {
			t.Errorf("expected first key to win, got %v", list)
		}
	})

	t.Run("Typed Objects", func(t *testing.T) {
		store := &listsOnly{lists: []any{&namedList{name: "Errands", guid: "e1"}, objList{id: "L1", title: "Groceries"}}}

		list, ok := quietTarget(store).FindList(ctx, "errands")
		if !ok || ListIdentifier(list) != "e1" {
			t.Errorf("expected Named handle, got %v", list)
		}
	})

	t.Run("Absent", func(t *testing.T) {
		tests := []struct {
			name  string
			store *listsOnly
		}{
			{name: "no match", store: &listsOnly{lists: []any{map[string]any{"title": "Hardware"}}}},
			{name: "empty", store: &listsOnly{lists: []any{}}},
			{name: "nil", store: &listsOnly{}},
			{name: "error", store: &listsOnly{err: errors.New("offline")}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				list, ok := quietTarget(tt.store).FindList(ctx, "Groceries")
				if ok || list != nil {
					t.Errorf("expected (nil, false), got (%v, %v)", list, ok)
				}
			})
		}
	})
}

func TestExistingUncompletedTitles(t *testing.T) {
	ctx := context.Background()

	t.Run("List-Scoped Map Key", func(t *testing.T) {
		list := map[string]any{
			"guid":  "g1",
			"title": "Groceries",
			"tasks": []any{
				map[string]any{"title": " Bread ", "completed": false},
				map[string]any{"title": "Milk", "completed": true},
				map[string]any{"name": "EGGS"},
				map[string]any{"title": ""},
			},
		}

		got := quietTarget(&listsOnly{}).ExistingUncompletedTitles(ctx, list)
		want := map[string]struct{}{"bread": {}, "eggs": {}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("Store-Wide Fallback Scoped By List", func(t *testing.T) {
		store := tu.NewFakeReminders()
		store.AddList("g1", "Groceries")
		store.AddList("g2", "Hardware")
		store.AddTask("g1", "Bread", false)
		store.AddTask("g1", "Butter", true)
		store.AddTask("g2", "Nails", false)

		list, _ := quietTarget(store).FindList(ctx, "Groceries")
		got := quietTarget(store).ExistingUncompletedTitles(ctx, list)
		want := map[string]struct{}{"bread": {}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("Tasks Without List Identifier Are Kept", func(t *testing.T) {
		list := map[string]any{"guid": "g1", "open": []any{map[string]any{"title": "Bread"}}}

		got := quietTarget(&listsOnly{}).ExistingUncompletedTitles(ctx, list)
		if _, ok := got["bread"]; !ok {
			t.Errorf("expected bread, got %v", got)
		}
	})

	t.Run("Typed Accessor", func(t *testing.T) {
		list := objList{id: "L1", tasks: []objTask{
			{title: "Milk", list: "L1"},
			{title: "Nails", list: "L2"},
			{title: "Eggs", list: "L1", done: true},
		}}

		got := quietTarget(&listsOnly{}).ExistingUncompletedTitles(ctx, list)
		want := map[string]struct{}{"milk": {}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("Failing Accessor Falls Back To Store", func(t *testing.T) {
		store := tu.NewFakeReminders()
		store.AddTask("L1", "Milk", false)
		list := objList{id: "L1", err: errors.New("not supported")}

		got := quietTarget(store).ExistingUncompletedTitles(ctx, list)
		if _, ok := got["milk"]; !ok {
			t.Errorf("expected store-wide fallback, got %v", got)
		}
	})

	t.Run("No Task Source", func(t *testing.T) {
		got := quietTarget(&listsOnly{}).ExistingUncompletedTitles(ctx, map[string]any{"guid": "g1"})
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil set, got %v", got)
		}

		store := tu.NewFakeReminders()
		store.UncompletedErr = errors.New("offline")
		got = quietTarget(store).ExistingUncompletedTitles(ctx, map[string]any{"guid": "g1"})
		if len(got) != 0 {
			t.Errorf("expected empty set on error, got %v", got)
		}
	})
}

func TestAddTask(t *testing.T) {
	ctx := context.Background()
	list := map[string]any{"guid": "g1", "title": "Groceries"}

	t.Run("Add By ID", func(t *testing.T) {
		store := tu.NewFakeReminders()
		store.AddList("g1", "Groceries")

		if !quietTarget(store).AddTask(ctx, list, "Milk") {
			t.Fatal("expected success")
		}
		if store.AddCalls != 1 || store.CreateCalls != 0 {
			t.Errorf("expected one add call, got add=%d create=%d", store.AddCalls, store.CreateCalls)
		}
		if got := store.OpenTitles("g1"); !reflect.DeepEqual(got, []string{"Milk"}) {
			t.Errorf("open titles = %v", got)
		}
	})

	t.Run("Argument Shape Rejected Retries By Name", func(t *testing.T) {
		store := tu.NewFakeReminders()
		store.AddList("g1", "Groceries")
		store.RejectListID = true

		if !quietTarget(store).AddTask(ctx, list, "Milk") {
			t.Fatal("expected success")
		}
		if store.AddCalls != 2 || store.CreateCalls != 0 {
			t.Errorf("expected two add calls, got add=%d create=%d", store.AddCalls, store.CreateCalls)
		}
		if got := store.OpenTitles("g1"); !reflect.DeepEqual(got, []string{"Milk"}) {
			t.Errorf("open titles = %v", got)
		}
	})

	t.Run("Other Add Error Skips To Create", func(t *testing.T) {
		store := &adderCreatorStore{addErr: errors.New("gateway down")}

		if !quietTarget(store).AddTask(ctx, list, "Milk") {
			t.Fatal("expected success through create-resource")
		}
		if len(store.requests) != 1 || store.requests[0].ListID != "g1" {
			t.Errorf("expected a single add-by-id request, got %+v", store.requests)
		}
		want := []map[string]any{{"title": "Milk", "list_id": "g1"}}
		if !reflect.DeepEqual(store.created, want) {
			t.Errorf("created = %v, want %v", store.created, want)
		}
	})

	t.Run("No List Identifier Adds By Name", func(t *testing.T) {
		store := &adderCreatorStore{}

		if !quietTarget(store).AddTask(ctx, map[string]any{"title": "Groceries"}, "Milk") {
			t.Fatal("expected success")
		}
		if len(store.requests) != 1 || store.requests[0].ListName != "Groceries" {
			t.Errorf("expected add-by-name, got %+v", store.requests)
		}
	})

	t.Run("Create Only Omits Missing List ID", func(t *testing.T) {
		store := &creatorStore{}

		if !quietTarget(store).AddTask(ctx, map[string]any{"title": "Groceries"}, "Milk") {
			t.Fatal("expected success")
		}
		want := []map[string]any{{"title": "Milk"}}
		if !reflect.DeepEqual(store.created, want) {
			t.Errorf("created = %v, want %v", store.created, want)
		}
	})

	t.Run("Panic Is Contained", func(t *testing.T) {
		store := &adderCreatorStore{panics: true}

		if !quietTarget(store).AddTask(ctx, list, "Milk") {
			t.Fatal("expected create-resource to run after the panic")
		}
		if len(store.created) != 1 {
			t.Errorf("expected one create, got %v", store.created)
		}
	})

	t.Run("All Strategies Fail", func(t *testing.T) {
		store := &adderCreatorStore{addErr: errors.New("down")}
		store.creatorStore.err = errors.New("also down")

		if quietTarget(store).AddTask(ctx, list, "Milk") {
			t.Error("expected failure")
		}
	})

	t.Run("No Strategy Applies", func(t *testing.T) {
		if quietTarget(&listsOnly{}).AddTask(ctx, list, "Milk") {
			t.Error("expected failure")
		}
	})

	t.Run("Paced Writes Stop On Cancel", func(t *testing.T) {
		store := tu.NewFakeReminders()
		store.AddList("g1", "Groceries")
		target := NewTarget(store, 0.001, shared.NewLogger(io.Discard))

		if !target.AddTask(ctx, list, "Milk") {
			t.Fatal("expected first paced write to pass")
		}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if target.AddTask(cancelled, list, "Bread") {
			t.Error("expected paced write on a cancelled context to fail")
		}
	})
}
