// Package pads drives a grid controller from the runner: pad presses become
// runner commands and runner status becomes LED frames.
//
// Layout (row 0 at the bottom):
//
//	rows 0-3, cols 0-7  steps of sequencer rows 0-3
//	rows 0-3, col 8     row on/off
//	rows 4-7            notes assigned to rows 0-3, one pad per note
//	row 8 (top CCs)     density -, density +, regenerate, hold, ordering, wrapping,
//	                    randomize
package pads

import (
	"sync"

	"github.com/pkg/errors"

	"go-rho/midi"
	"go-rho/sequencer"
	"go-rho/theme"
	"go-rho/widgets"
)

const (
	sideCol   = 8
	topRow    = 8
	stepCols  = 8
	notesBase = sequencer.NumRows
)

// Top row buttons
const (
	BtnDensityDown = iota
	BtnDensityUp
	BtnRegenerate
	BtnHold
	BtnOrdering
	BtnWrapping
	BtnRandomize
)

// Sender queues runner commands
type Sender interface {
	Send(cmd sequencer.Command) error
}

// LEDSink shows LED updates
type LEDSink interface {
	SetLEDBatch(updates []midi.LEDUpdate) error
}

// Cell is one pad's colour and LED mode
type Cell struct {
	Color   theme.RGB
	Channel uint8
}

// Frame is a whole surface, indexed [row][col]
type Frame [widgets.PadGridSize][widgets.PadGridSize]Cell

// Colors strips the LED modes for terminal preview
func (f *Frame) Colors() [widgets.PadGridSize][widgets.PadGridSize][3]uint8 {
	var out [widgets.PadGridSize][widgets.PadGridSize][3]uint8
	for r := range f {
		for c := range f[r] {
			out[r][c] = f[r][c].Color
		}
	}
	return out
}

// Commands maps a pad press to runner commands given the current status
func Commands(ev midi.PadEvent, st *sequencer.Status) []sequencer.Command {
	if ev.Row == topRow {
		return topCommands(ev.Col, st)
	}
	if ev.Row < 0 || ev.Row >= sequencer.NumRows {
		return nil
	}
	row := st.Rows[ev.Row]

	if ev.Col == sideCol {
		return []sequencer.Command{sequencer.RowActiveCmd{Row: ev.Row, Active: !row.Active}}
	}
	if ev.Col < 0 || ev.Col >= stepCols {
		return nil
	}
	if ev.Col >= len(row.Steps) {
		length := ev.Col + 1
		if length < sequencer.MinRowLength {
			length = sequencer.MinRowLength
		}
		return []sequencer.Command{sequencer.RowLengthCmd{Row: ev.Row, Length: length}}
	}
	return []sequencer.Command{sequencer.ToggleStepCmd{Row: ev.Row, Step: ev.Col}}
}

func topCommands(col int, st *sequencer.Status) []sequencer.Command {
	switch col {
	case BtnDensityDown:
		return []sequencer.Command{sequencer.DensityStepCmd{Delta: -1}}
	case BtnDensityUp:
		return []sequencer.Command{sequencer.DensityStepCmd{Delta: 1}}
	case BtnRegenerate:
		return []sequencer.Command{sequencer.RegenerateCmd{}}
	case BtnHold:
		return []sequencer.Command{sequencer.HoldCmd{Enabled: !st.Hold}}
	case BtnOrdering:
		o, err := sequencer.ParseOrdering(st.Ordering)
		if err != nil {
			return nil
		}
		return []sequencer.Command{sequencer.OrderingCmd{Ordering: o.Next()}}
	case BtnWrapping:
		w, err := sequencer.ParseWrapping(st.Wrapping)
		if err != nil {
			return nil
		}
		return []sequencer.Command{sequencer.WrappingCmd{Wrapping: w.Next()}}
	case BtnRandomize:
		return []sequencer.Command{sequencer.RandomizeCmd{}}
	}
	return nil
}

var (
	white  = theme.RGB{255, 255, 255}
	offRed = theme.RGB{60, 0, 0}
)

// Render draws the status as a frame
func Render(st *sequencer.Status, th *theme.Theme) Frame {
	var f Frame

	for r, row := range st.Rows {
		color := th.RowRGB(r, sequencer.NumRows)
		level := 1.0
		if !row.Active {
			level = 0.3
		}

		for c := 0; c < stepCols && c < len(row.Steps); c++ {
			switch {
			case c == row.Playhead:
				f[r][c] = Cell{Color: white.Dim(level)}
			case row.Steps[c]:
				f[r][c] = Cell{Color: color.Dim(level)}
			default:
				f[r][c] = Cell{Color: color.Dim(0.12 * level)}
			}
		}

		if row.Active {
			f[r][sideCol] = Cell{Color: color}
		} else {
			f[r][sideCol] = Cell{Color: offRed}
		}

		for i := 0; i < stepCols && i < len(row.Notes); i++ {
			f[notesBase+r][i] = Cell{Color: color.Dim(0.5 * level)}
		}
	}

	accent := th.RGB(theme.RoleAccent)
	f[topRow][BtnDensityDown] = Cell{Color: accent.Dim(0.3 + 0.7*(1-st.Density))}
	f[topRow][BtnDensityUp] = Cell{Color: accent.Dim(0.3 + 0.7*st.Density)}
	f[topRow][BtnRegenerate] = Cell{Color: accent}
	f[topRow][BtnRandomize] = Cell{Color: th.RGB(theme.RoleWarning)}
	if st.Hold {
		f[topRow][BtnHold] = Cell{Color: th.RGB(theme.RoleHold), Channel: midi.ChannelPulse}
	} else {
		f[topRow][BtnHold] = Cell{Color: th.RGB(theme.RoleHold).Dim(0.15)}
	}
	if o, err := sequencer.ParseOrdering(st.Ordering); err == nil {
		f[topRow][BtnOrdering] = Cell{Color: th.RGB(0.3 + 0.5*float64(o))}
	}
	if w, err := sequencer.ParseWrapping(st.Wrapping); err == nil {
		f[topRow][BtnWrapping] = Cell{Color: th.RGB(0.2 + 0.2*float64(w))}
	}
	return f
}

// Diff lists the pads whose cell changed. A nil prev gives every pad.
func Diff(prev *Frame, next *Frame) []midi.LEDUpdate {
	var updates []midi.LEDUpdate
	for r := 0; r < widgets.PadGridSize; r++ {
		for c := 0; c < widgets.PadGridSize; c++ {
			if r == topRow && c == sideCol {
				continue // no LED at 8,8
			}
			if prev != nil && prev[r][c] == next[r][c] {
				continue
			}
			cell := next[r][c]
			updates = append(updates, midi.LEDUpdate{Row: r, Col: c, Color: cell.Color, Channel: cell.Channel})
		}
	}
	return updates
}

// Surface connects one grid controller to a runner
type Surface struct {
	sender Sender
	leds   LEDSink
	theme  *theme.Theme

	mu   sync.Mutex
	last *Frame
}

func NewSurface(sender Sender, leds LEDSink, th *theme.Theme) *Surface {
	return &Surface{sender: sender, leds: leds, theme: th}
}

// HandlePad sends the commands for one pad press
func (s *Surface) HandlePad(ev midi.PadEvent, st *sequencer.Status) error {
	for _, cmd := range Commands(ev, st) {
		if err := s.sender.Send(cmd); err != nil {
			return errors.Wrapf(err, "pad %d,%d", ev.Row, ev.Col)
		}
	}
	return nil
}

// Sync pushes the LEDs that differ from the last frame sent
func (s *Surface) Sync(st *sequencer.Status) error {
	next := Render(st, s.theme)

	s.mu.Lock()
	defer s.mu.Unlock()
	updates := Diff(s.last, &next)
	if len(updates) == 0 {
		return nil
	}
	if err := s.leds.SetLEDBatch(updates); err != nil {
		s.last = nil
		return err
	}
	s.last = &next
	return nil
}

// Last returns the last frame sent, or nil
func (s *Surface) Last() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	f := *s.last
	return &f
}

// Reset forgets the last frame so the next Sync redraws everything
func (s *Surface) Reset() {
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}
