package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/listsync/internal/models"
)

var (
	_ list.Item = listItem{}
	_ list.Item = entryItem{}
)

// listItem wraps [models.SourceList] to implement [list.Item].
type listItem struct {
	list models.SourceList
}

func (i listItem) FilterValue() string { return i.list.Title }
func (i listItem) Title() string       { return i.list.Title }
func (i listItem) Description() string {
	open := len(i.list.Unchecked())
	desc := fmt.Sprintf("%d unchecked", open)
	if done := len(i.list.Items) - open; done > 0 {
		desc = fmt.Sprintf("%s • %d checked", desc, done)
	}
	return desc
}

// entryItem wraps [models.SourceItem] to implement [list.Item].
type entryItem struct {
	item models.SourceItem
}

func (i entryItem) FilterValue() string { return i.item.Text }
func (i entryItem) Title() string {
	if i.item.Checked {
		return "[x] " + i.item.Text
	}
	return "[ ] " + i.item.Text
}
func (i entryItem) Description() string {
	if i.item.Checked {
		return "checked"
	}
	return "open"
}
