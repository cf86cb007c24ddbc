package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-rho/theme"
)

func TestStepSymbols(t *testing.T) {
	sym := theme.New(theme.Plasma()).Symbols
	r := StepRow{Steps: []bool{true, false, true}, Playhead: 2, Cursor: 1}

	var got []rune
	for i := 0; i < 5; i++ {
		got = append(got, stepSymbol(r, i, sym))
	}
	assert.Equal(t, []rune{'●', '○', '▶', '-', '-'}, got)

	r.Cursor = 4
	assert.Equal(t, '□', stepSymbol(r, 4, sym))
	r.Cursor = 2
	assert.Equal(t, '▷', stepSymbol(r, 2, sym))
	r.Cursor = 0
	assert.Equal(t, '◉', stepSymbol(r, 0, sym))
}

func TestRenderStepsWidth(t *testing.T) {
	sym := theme.New(theme.Plasma()).Symbols
	out := RenderSteps(StepRow{Steps: []bool{true, false}, Playhead: -1, Cursor: -1, Width: 4}, sym, "#333333")
	assert.Contains(t, out, "●")
	assert.Equal(t, 2, strings.Count(out, "-"))
}

func TestRenderPadGrid(t *testing.T) {
	var grid [PadGridSize][PadGridSize][3]uint8
	out := RenderPadGrid(grid)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, PadGridSize)
	assert.Equal(t, 8, strings.Count(lines[0], "■"))
	assert.Equal(t, 9, strings.Count(lines[1], "■"))
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Grid", Keys: []KeyBinding{{Key: "space", Desc: "toggle step"}}},
	})
	assert.Equal(t, "Grid\n  space        toggle step", out)
}
