package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme colours the terminal grid and the pad surface from one palette
type Theme struct {
	Palette *Palette
	Symbols Symbols
}

// Symbols draw one step cell; the Cursor variants are used under the cursor
type Symbols struct {
	StepOff      rune // · step off
	StepOn       rune // ● step on
	StepPlayhead rune // ▶ step playing
	StepBeyond   rune // - past the row's length

	CursorOff      rune
	CursorOn       rune
	CursorPlayhead rune
	CursorBeyond   rune
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepOff:      '·',
			StepOn:       '●',
			StepPlayhead: '▶',
			StepBeyond:   '-',

			CursorOff:      '○',
			CursorOn:       '◉',
			CursorPlayhead: '▷',
			CursorBeyond:   '□',
		},
	}
}

// Palette positions (0-1) of the colours rho draws with
const (
	RoleMuted   = 0.2  // help, inactive rows
	RoleFG      = 0.4  // labels
	RoleAccent  = 0.5  // header, density and regenerate pads
	RoleRowBase = 0.7  // a lone row
	RoleWarning = 0.8  // errors, randomize pad
	RoleHold    = 1.0  // hold pad
	rowSpread   = 0.55 // rows span 0.45-1
)

// Color is the terminal colour at a palette position
func (t *Theme) Color(role float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(role))
}

// RGB is the raw colour at a palette position, for pads
func (t *Theme) RGB(role float64) RGB {
	return t.Palette.Lookup(role)
}

// RowRGB gives each of n rows its own colour from the upper half of the palette
func (t *Theme) RowRGB(row, n int) RGB {
	if n <= 1 {
		return t.Palette.Lookup(RoleRowBase)
	}
	return t.Palette.Lookup(1 - rowSpread + rowSpread*float64(row)/float64(n-1))
}

// RowColor is RowRGB for the terminal
func (t *Theme) RowColor(row, n int) lipgloss.Color {
	return rgbToLipgloss(t.RowRGB(row, n))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
