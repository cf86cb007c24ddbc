package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PadGridSize is the Launchpad X layout: 8x8 pads, a side column and a top row
const PadGridSize = 9

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderPadGrid renders a full Launchpad frame, top row first. grid is
// indexed [row][col] with row 0 at the bottom; the 8,8 corner has no pad.
func RenderPadGrid(grid [PadGridSize][PadGridSize][3]uint8) string {
	var lines []string
	for row := PadGridSize - 1; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < PadGridSize; col++ {
			if col > 0 {
				line.WriteString(" ")
			}
			if col == 8 && row == 8 {
				line.WriteString(" ")
				continue
			}
			line.WriteString(RenderPad(grid[row][col]))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
