// Package ui implements an interactive terminal browser for the source store using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [ListsView] : Browse source lists with their unchecked counts
//  2. [ItemsView] : Inspect one list and check items off with x
//  3. [AddView] : Append an item to the selected list
//  4. [SyncView] : Monitor a reconciliation cycle started with s
//  5. [ResultView] : Display per-pair results of the cycle
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the Reconciler, providing non-blocking status reporting during a cycle.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, x, a, s, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
