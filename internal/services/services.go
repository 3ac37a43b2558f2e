// package services defines the store interfaces the sync engine talks to and their HTTP implementations
//
// Google Keep (via gateway), iCloud Reminders (via gateway), Google Tasks
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/models"
)

var (
	// ErrArgumentShape is returned by an [Adder] that rejected the shape of its arguments rather than the
	// task itself. Callers may retry with a different argument shape.
	ErrArgumentShape = fmt.Errorf("argument shape rejected")

	// ErrTwoFactorRequired is returned when the target account needs a two-factor code that was not supplied.
	ErrTwoFactorRequired = fmt.Errorf("two-factor authentication required")
)

// Authenticator is implemented by stores that need a login before use.
type Authenticator interface {
	// Authenticate logs in and loads the authoritative store state.
	Authenticate(ctx context.Context) error

	// Name returns the name of the store (e.g., "Google Keep")
	Name() string
}

// NotesStore is the source store: titled checklists whose entries can be read and mutated.
type NotesStore interface {
	// Lists returns every checklist in store order.
	Lists(ctx context.Context) ([]models.SourceList, error)

	// AddItem appends an unchecked entry to a list.
	AddItem(ctx context.Context, listID, text string) error

	// CheckItem marks an entry as checked.
	CheckItem(ctx context.Context, listID, itemID string) error

	// DeleteItem removes an entry from a list.
	DeleteItem(ctx context.Context, listID, itemID string) error

	// Sync pushes pending changes and re-reads the authoritative state.
	Sync(ctx context.Context) error
}

// RemindersStore is the target store.
//
// Lists returns either a mapping (map[string]any or any map keyed by string) or a sequence of list
// handles. A handle is a map[string]any or an object implementing any of the accessor interfaces below.
// Optional capabilities are discovered with type assertions: [UncompletedLister], [Adder] and
// [ResourceCreator].
type RemindersStore interface {
	Lists(ctx context.Context) (any, error)
}

// Titled is implemented by list handles and tasks that expose a title.
type Titled interface{ Title() string }

// Named is implemented by list handles and tasks that expose a name.
type Named interface{ Name() string }

// Identified is implemented by list handles that expose an id.
type Identified interface{ ID() string }

// GUIDed is implemented by list handles that expose a guid.
type GUIDed interface{ GUID() string }

// ParentGUIDed is implemented by list handles and tasks that carry a parent guid.
type ParentGUIDed interface{ ParentGUID() string }

// ListScoped is implemented by list handles and tasks that carry a list id.
type ListScoped interface{ ListID() string }

// Completable is implemented by tasks that report completion.
type Completable interface{ IsCompleted() bool }

// TaskLister is implemented by list handles that can enumerate their tasks.
type TaskLister interface {
	Tasks(ctx context.Context) (any, error)
}

// OpenLister is implemented by list handles that can enumerate their open tasks.
type OpenLister interface {
	Open(ctx context.Context) (any, error)
}

// UncompletedLister is implemented by list handles or whole stores that can enumerate uncompleted tasks.
type UncompletedLister interface {
	Uncompleted(ctx context.Context) (any, error)
}

// AddRequest describes a task to create. Exactly one of ListID or ListName is set.
type AddRequest struct {
	Title    string
	ListID   string
	ListName string
}

// Adder is implemented by stores with a dedicated task creation call.
type Adder interface {
	Add(ctx context.Context, req AddRequest) error
}

// ResourceCreator is implemented by stores with a generic create call, such as a POST to a named resource.
type ResourceCreator interface {
	Create(ctx context.Context, resource string, payload map[string]any) error
}
