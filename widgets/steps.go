package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-rho/theme"
)

// StepRow describes one sequencer row for RenderSteps
type StepRow struct {
	Steps    []bool
	Playhead int // -1 for none
	Cursor   int // -1 when the cursor is on another row
	Width    int // cells drawn; steps past the row length show as beyond
	Color    lipgloss.Color
	Dimmed   bool
}

// RenderSteps draws a row of step cells
func RenderSteps(r StepRow, sym theme.Symbols, muted lipgloss.Color) string {
	on := lipgloss.NewStyle().Foreground(r.Color)
	off := lipgloss.NewStyle().Foreground(muted)
	if r.Dimmed {
		on = off
	}

	width := r.Width
	if width < len(r.Steps) {
		width = len(r.Steps)
	}

	cells := make([]string, width)
	for i := range cells {
		cells[i] = off.Render(string(stepSymbol(r, i, sym)))
		if i < len(r.Steps) && (r.Steps[i] || i == r.Playhead) {
			cells[i] = on.Render(string(stepSymbol(r, i, sym)))
		}
	}
	return strings.Join(cells, " ")
}

func stepSymbol(r StepRow, i int, sym theme.Symbols) rune {
	cursor := i == r.Cursor
	switch {
	case i >= len(r.Steps):
		if cursor {
			return sym.CursorBeyond
		}
		return sym.StepBeyond
	case i == r.Playhead:
		if cursor {
			return sym.CursorPlayhead
		}
		return sym.StepPlayhead
	case r.Steps[i]:
		if cursor {
			return sym.CursorOn
		}
		return sym.StepOn
	default:
		if cursor {
			return sym.CursorOff
		}
		return sym.StepOff
	}
}
