package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListsView ViewState = iota
	ItemsView
	AddView
	SyncView
	ResultView
)

// Store is the source store as the browser uses it. [engine.SourceReader] implements it.
type Store interface {
	Lists(ctx context.Context) ([]models.SourceList, error)
	AddItem(ctx context.Context, name, text string) error
	CheckItem(ctx context.Context, name, text string) error
}

// SyncFunc runs one reconciliation cycle, reporting progress on the channel.
type SyncFunc func(ctx context.Context, progress chan<- engine.ProgressUpdate) models.RunResult

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	store        Store
	sync         SyncFunc
	width        int
	height       int
	listList     list.Model
	lists        []models.SourceList
	itemList     list.Model
	selected     string
	input        textinput.Model
	progressChan chan engine.ProgressUpdate
	doneChan     chan models.RunResult
	progress     engine.ProgressUpdate
	result       *models.RunResult
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. sync may be nil, which disables the sync key.
func NewModel(ctx context.Context, store Store, sync SyncFunc) *Model {
	input := textinput.New()
	input.Placeholder = "New item"
	input.CharLimit = 200

	m := &Model{
		ctx:   ctx,
		view:  ListsView,
		store: store,
		sync:  sync,
		input: input,
		help:  help.New(),
		keys:  newKeyMap(),
	}
	m.listList = newList("Source Lists", nil)
	m.itemList = newList("", nil)
	return m
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return l
}

// Init initializes the TUI by fetching the source lists.
func (m *Model) Init() tea.Cmd {
	return m.fetchLists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listList.SetSize(msg.Width-4, msg.Height-8)
		m.itemList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListsView:
			return m.handleListsKeys(msg)
		case ItemsView:
			return m.handleItemsKeys(msg)
		case AddView:
			return m.handleAddKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case SyncView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgListsFetched:
		data := msg.data.(listsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.setLists(data.lists)
		return m, nil

	case MsgItemChanged:
		data := msg.data.(itemChanged)
		if data.err != nil {
			m.status = styles.err.Render(data.err.Error())
			return m, nil
		}
		m.status = styles.ok.Render(data.status)
		return m, m.fetchLists()

	case MsgProgressUpdate:
		m.progress = msg.data.(engine.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		result := msg.data.(models.RunResult)
		m.result = &result
		m.progressChan = nil
		m.doneChan = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// setLists replaces the list view items and refreshes the selected list's entries.
func (m *Model) setLists(lists []models.SourceList) {
	m.lists = lists
	items := make([]list.Item, len(lists))
	for i, l := range lists {
		items[i] = listItem{list: l}
	}
	m.listList.SetItems(items)

	if m.selected != "" {
		if l, ok := m.findList(m.selected); ok {
			m.setEntries(l)
		}
	}
}

func (m *Model) setEntries(l models.SourceList) {
	items := make([]list.Item, len(l.Items))
	for i, item := range l.Items {
		items[i] = entryItem{item: item}
	}
	m.itemList.SetItems(items)
	m.itemList.Title = fmt.Sprintf("Items in '%s'", l.Title)
}

func (m *Model) findList(title string) (models.SourceList, bool) {
	for _, l := range m.lists {
		if l.Title == title {
			return l, true
		}
	}
	return models.SourceList{}, false
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}

	switch m.view {
	case ListsView:
		return m.renderLists()
	case ItemsView:
		return m.renderItems()
	case AddView:
		return m.renderAdd()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.listList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.err = nil
		return m, m.fetchLists()
	case key.Matches(msg, m.keys.sync):
		if m.sync != nil {
			m.view = SyncView
			return m, m.startSync()
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.listList.SelectedItem().(listItem); ok {
			m.selected = selected.list.Title
			m.setEntries(selected.list)
			m.status = ""
			m.view = ItemsView
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.itemList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.selected = ""
		m.status = ""
		m.view = ListsView
		return m, nil
	case key.Matches(msg, m.keys.add):
		m.input.SetValue("")
		m.view = AddView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.check):
		if selected, ok := m.itemList.SelectedItem().(entryItem); ok && !selected.item.Checked {
			return m, m.checkItem(m.selected, selected.item.Text)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Blur()
		m.view = ItemsView
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.view = ItemsView
		if text == "" {
			return m, nil
		}
		return m, m.addItem(m.selected, text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh), key.Matches(msg, m.keys.back):
		m.view = ListsView
		m.result = nil
		return m, m.fetchLists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListsView:
		m.listList, cmd = m.listList.Update(msg)
	case ItemsView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchLists() tea.Cmd {
	return func() tea.Msg {
		lists, err := m.store.Lists(m.ctx)
		return listsFetchedMsg(lists, err)
	}
}

func (m *Model) checkItem(name, text string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.CheckItem(m.ctx, name, text); err != nil {
			return itemChangedMsg("", err)
		}
		return itemChangedMsg(fmt.Sprintf("Checked '%s'", text), nil)
	}
}

func (m *Model) addItem(name, text string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.AddItem(m.ctx, name, text); err != nil {
			return itemChangedMsg("", err)
		}
		return itemChangedMsg(fmt.Sprintf("Added '%s'", text), nil)
	}
}

func (m *Model) startSync() tea.Cmd {
	progress := make(chan engine.ProgressUpdate, 50)
	done := make(chan models.RunResult, 1)
	m.progressChan = progress
	m.doneChan = done
	m.progress = engine.ProgressUpdate{}

	go func() {
		done <- m.sync(m.ctx, progress)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return syncCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLists() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	if m.sync != nil {
		helpKeys = append(helpKeys, m.keys.sync)
	}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.listList.View(), helpView)
}

func (m *Model) renderItems() string {
	helpKeys := []key.Binding{m.keys.check, m.keys.add, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	out := fmt.Sprintf("%s\n\n%s", m.itemList.View(), helpView)
	if m.status != "" {
		out = fmt.Sprintf("%s\n%s", out, m.status)
	}
	return out
}

func (m *Model) renderAdd() string {
	title := styles.title.Render(fmt.Sprintf("Add item to '%s'", m.selected))
	hint := styles.help.Render("enter to save • esc to cancel")
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), hint)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Lists")

	var phase string
	switch m.progress.Phase {
	case engine.Prepare:
		phase = "Logging in..."
	case engine.FetchSource:
		phase = "Reading source list..."
	case engine.ResolveTarget:
		phase = "Resolving target list..."
	case engine.Snapshot:
		phase = "Reading existing tasks..."
	case engine.AddTasks:
		phase = fmt.Sprintf("Adding tasks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}
	if m.result.Err != "" {
		return styles.err.Render(fmt.Sprintf("Sync skipped: %s\n\nPress r to go back, q to quit", m.result.Err))
	}

	title := styles.ok.Render(fmt.Sprintf("✓ Sync Complete: %d added", m.result.TotalAdded))

	var lines []string
	for _, p := range m.result.Pairs {
		lines = append(lines, styles.Pair(p))
	}

	helpKeys := []key.Binding{m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, strings.Join(lines, "\n"), helpView)
}
