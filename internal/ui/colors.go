package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/listsync/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette holds the named styles the browser renders with.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// NewPalette builds a palette from title, success, error, warning and help colors.
func NewPalette(title, ok, err, warn, help string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(ok),
		err:   NewBold(err),
		warn:  NewStyle(warn),
		help:  NewEm(help),
	}
}

// Pair renders one line of a sync result: errors for skipped pairs, a warning when items failed.
func (p *Palette) Pair(r models.PairResult) string {
	line := fmt.Sprintf("  • %s: %s (%d added)", r.Pair, r.Status, r.Added)
	switch {
	case r.Status == models.PairTargetNotFound, r.Status == models.PairFailed:
		return p.err.Render(line)
	case r.Failed > 0:
		return p.warn.Render(fmt.Sprintf("%s, %d failed", line, r.Failed))
	default:
		return line
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
