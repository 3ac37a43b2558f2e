package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListsFetched MsgKind = iota
	MsgItemChanged
	MsgProgressUpdate
	MsgSyncComplete
)

type listsFetched struct {
	lists []models.SourceList
	err   error
}

type itemChanged struct {
	status string
	err    error
}

// listsFetchedMsg is the constructor for [MsgListsFetched]
func listsFetchedMsg(lists []models.SourceList, err error) Msg {
	return Msg{kind: MsgListsFetched, data: listsFetched{lists, err}}
}

// itemChangedMsg is the constructor for [MsgItemChanged]
func itemChangedMsg(status string, err error) Msg {
	return Msg{kind: MsgItemChanged, data: itemChanged{status, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update engine.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(result models.RunResult) Msg {
	return Msg{kind: MsgSyncComplete, data: result}
}
