package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

// SourceReader reads and mutates checklists in the source store, addressing them by title.
type SourceReader struct {
	store  services.NotesStore
	logger *log.Logger
}

func NewSourceReader(store services.NotesStore, logger *log.Logger) *SourceReader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SourceReader{store: store, logger: logger}
}

// find returns the first list whose normalized title equals the normalized name.
func (s *SourceReader) find(ctx context.Context, name string) (*models.SourceList, error) {
	lists, err := s.store.Lists(ctx)
	if err != nil {
		return nil, err
	}

	want := shared.Normalize(name)
	for i := range lists {
		if shared.Normalize(lists[i].Title) == want {
			return &lists[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrListNotFound, name)
}

// FetchUnchecked returns the trimmed text of every non-empty unchecked item of the named list in store
// order. A missing list or any store error yields an empty slice.
func (s *SourceReader) FetchUnchecked(ctx context.Context, name string) []string {
	list, err := s.find(ctx, name)
	if err != nil {
		s.logger.Warn("Could not read source list", "list", name, "error", err)
		return nil
	}

	items := list.Unchecked()
	if len(items) == 0 {
		s.logger.Warn("No unchecked items in source list", "list", name)
		return items
	}
	s.logger.Info("Fetched unchecked items", "list", name, "count", len(items))
	return items
}

// FetchAll returns the unchecked items of every titled list, keyed by title. The first list wins when
// titles repeat.
func (s *SourceReader) FetchAll(ctx context.Context) (map[string][]string, error) {
	lists, err := s.store.Lists(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(lists))
	for _, list := range lists {
		title := strings.TrimSpace(list.Title)
		if title == "" {
			continue
		}
		if _, seen := out[title]; seen {
			continue
		}
		out[title] = list.Unchecked()
	}
	return out, nil
}

// Lists returns the raw source lists.
func (s *SourceReader) Lists(ctx context.Context) ([]models.SourceList, error) {
	return s.store.Lists(ctx)
}

// DeleteAllItems removes every item of the named list and returns how many were deleted.
// A missing list is logged and counts as zero.
func (s *SourceReader) DeleteAllItems(ctx context.Context, name string) (int, error) {
	list, err := s.find(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrListNotFound) {
			s.logger.Warn("List not found; nothing to clear", "list", name)
			return 0, nil
		}
		return 0, err
	}

	items := append([]models.SourceItem(nil), list.Items...)
	deleted := 0
	for _, item := range items {
		if err := s.store.DeleteItem(ctx, list.ID, item.ID); err != nil {
			return deleted, fmt.Errorf("failed to delete %q from %s: %w", item.Text, name, err)
		}
		deleted++
	}

	if err := s.store.Sync(ctx); err != nil {
		return deleted, err
	}
	s.logger.Info("Deleted items", "list", name, "count", deleted)
	return deleted, nil
}

// AddItem appends an unchecked item to the named list.
func (s *SourceReader) AddItem(ctx context.Context, name, text string) error {
	list, err := s.find(ctx, name)
	if err != nil {
		return err
	}

	if err := s.store.AddItem(ctx, list.ID, text); err != nil {
		return err
	}
	if err := s.store.Sync(ctx); err != nil {
		return err
	}
	s.logger.Info("Added item", "list", name, "text", text)
	return nil
}

// CheckItem marks the first item whose normalized text matches text as checked.
func (s *SourceReader) CheckItem(ctx context.Context, name, text string) error {
	list, err := s.find(ctx, name)
	if err != nil {
		return err
	}

	want := shared.Normalize(text)
	for _, item := range list.Items {
		if shared.Normalize(item.Text) != want {
			continue
		}
		if err := s.store.CheckItem(ctx, list.ID, item.ID); err != nil {
			return err
		}
		if err := s.store.Sync(ctx); err != nil {
			return err
		}
		s.logger.Info("Checked item", "list", name, "text", item.Text)
		return nil
	}

	return fmt.Errorf("%w: %s in %s", shared.ErrItemNotFound, text, name)
}
