package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
)

// FakeNotes is an in-memory [services.NotesStore] with error injection.
type FakeNotes struct {
	mu     sync.Mutex
	lists  []models.SourceList
	nextID int

	ListsErr  error
	AddErr    error
	CheckErr  error
	DeleteErr error
	SyncErr   error

	ListsCalls int
	Syncs      int
}

// NewFakeNotes creates a store holding copies of lists.
func NewFakeNotes(lists ...models.SourceList) *FakeNotes {
	f := &FakeNotes{}
	for _, l := range lists {
		f.lists = append(f.lists, copyList(l))
	}
	return f
}

func copyList(l models.SourceList) models.SourceList {
	c := l
	c.Items = append([]models.SourceItem(nil), l.Items...)
	return c
}

func (f *FakeNotes) Lists(ctx context.Context) ([]models.SourceList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListsCalls++
	if f.ListsErr != nil {
		return nil, f.ListsErr
	}
	out := make([]models.SourceList, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, copyList(l))
	}
	return out, nil
}

func (f *FakeNotes) AddItem(ctx context.Context, listID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return f.AddErr
	}
	list, err := f.find(listID)
	if err != nil {
		return err
	}
	f.nextID++
	list.Items = append(list.Items, models.SourceItem{ID: fmt.Sprintf("new-%d", f.nextID), Text: text})
	return nil
}

func (f *FakeNotes) CheckItem(ctx context.Context, listID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CheckErr != nil {
		return f.CheckErr
	}
	list, err := f.find(listID)
	if err != nil {
		return err
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			list.Items[i].Checked = true
			return nil
		}
	}
	return fmt.Errorf("item %s not found", itemID)
}

func (f *FakeNotes) DeleteItem(ctx context.Context, listID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	list, err := f.find(listID)
	if err != nil {
		return err
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			list.Items = append(list.Items[:i], list.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not found", itemID)
}

func (f *FakeNotes) Sync(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Syncs++
	return f.SyncErr
}

// Items returns a copy of the entries of the list with the given id.
func (f *FakeNotes) Items(listID string) []models.SourceItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, err := f.find(listID)
	if err != nil {
		return nil
	}
	return append([]models.SourceItem(nil), list.Items...)
}

func (f *FakeNotes) find(listID string) (*models.SourceList, error) {
	for i := range f.lists {
		if f.lists[i].ID == listID {
			return &f.lists[i], nil
		}
	}
	return nil, fmt.Errorf("list %s not found", listID)
}

// FakeReminders is an in-memory [services.RemindersStore] that answers with JSON-like maps,
// the way a reminders gateway does. It implements every optional capability.
type FakeReminders struct {
	mu    sync.Mutex
	lists []map[string]any
	tasks []map[string]any

	// Mapping makes Lists return a map keyed by guid instead of a slice.
	Mapping bool
	// RejectListID makes Add reject requests that carry a list id with [services.ErrArgumentShape].
	RejectListID bool

	ListsErr       error
	UncompletedErr error
	AddErr         error
	CreateErr      error
	// FailTitles makes Add and Create fail for the given titles.
	FailTitles map[string]bool

	AddCalls    int
	CreateCalls int
}

func NewFakeReminders() *FakeReminders {
	return &FakeReminders{FailTitles: map[string]bool{}}
}

// AddList registers a list handle.
func (f *FakeReminders) AddList(guid, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, map[string]any{"guid": guid, "title": title})
}

// AddTask registers a task in the list with the given guid.
func (f *FakeReminders) AddTask(listGUID, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, map[string]any{"title": title, "pGuid": listGUID, "completed": completed})
}

// OpenTitles returns the titles of uncompleted tasks in a list, in insertion order.
func (f *FakeReminders) OpenTitles(listGUID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []string
	for _, t := range f.tasks {
		if t["pGuid"] == listGUID && t["completed"] != true {
			titles = append(titles, t["title"].(string))
		}
	}
	return titles
}

func (f *FakeReminders) Lists(ctx context.Context) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListsErr != nil {
		return nil, f.ListsErr
	}
	if f.Mapping {
		out := make(map[string]any, len(f.lists))
		for _, l := range f.lists {
			out[l["guid"].(string)] = copyMap(l)
		}
		return out, nil
	}
	out := make([]any, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, copyMap(l))
	}
	return out, nil
}

func (f *FakeReminders) Uncompleted(ctx context.Context) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UncompletedErr != nil {
		return nil, f.UncompletedErr
	}
	out := make([]any, 0, len(f.tasks))
	for _, t := range f.tasks {
		if t["completed"] != true {
			out = append(out, copyMap(t))
		}
	}
	return out, nil
}

func (f *FakeReminders) Add(ctx context.Context, req services.AddRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	if f.AddErr != nil {
		return f.AddErr
	}
	if f.RejectListID && req.ListID != "" {
		return fmt.Errorf("%w: list_id", services.ErrArgumentShape)
	}
	if f.FailTitles[req.Title] {
		return fmt.Errorf("add %q failed", req.Title)
	}

	guid := req.ListID
	if guid == "" {
		for _, l := range f.lists {
			if strings.EqualFold(l["title"].(string), req.ListName) {
				guid = l["guid"].(string)
			}
		}
	}
	if guid == "" {
		return fmt.Errorf("list %q not found", req.ListName)
	}
	f.tasks = append(f.tasks, map[string]any{"title": req.Title, "pGuid": guid, "completed": false})
	return nil
}

func (f *FakeReminders) Create(ctx context.Context, resource string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return f.CreateErr
	}
	title, _ := payload["title"].(string)
	if f.FailTitles[title] {
		return fmt.Errorf("create %q failed", title)
	}
	listID, _ := payload["list_id"].(string)
	f.tasks = append(f.tasks, map[string]any{"title": title, "pGuid": listID, "completed": false})
	return nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
