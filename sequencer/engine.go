package sequencer

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Engine turns clock edges into notes. Every row steps through its own
// pattern; rows that land on an active step ask the NoteAssigner for a note.
// All notes started on a high edge are stopped on the next low edge.
type Engine struct {
	rows     [NumRows]*LoopingSequence[bool]
	playing  [NumRows]int // step played on the last high edge, -1 before any
	arp      *NoteAssigner
	sounding []Note
}

// NewEngine creates an engine whose rows have empty patterns
func NewEngine() *Engine {
	e := &Engine{arp: NewNoteAssigner()}
	for i := range e.rows {
		e.rows[i] = NewLoopingSequence[bool](nil)
		e.playing[i] = -1
	}
	return e
}

// Arp exposes the note assigner for configuration
func (e *Engine) Arp() *NoteAssigner {
	return e.arp
}

func (e *Engine) NoteOn(number, velocity int) {
	e.arp.NoteOn(number, velocity)
}

func (e *Engine) NoteOff(number int) {
	e.arp.NoteOff(number)
}

// OnClockHigh steps every row and returns the notes to start
func (e *Engine) OnClockHigh() []Note {
	var triggered []int
	for i, row := range e.rows {
		cursor := row.Cursor()
		on, ok := row.Next()
		if !ok {
			e.playing[i] = -1
			continue
		}
		e.playing[i] = cursor % row.Len()
		if on {
			triggered = append(triggered, i)
		}
	}

	notes := e.arp.NextNotes(triggered)
	e.sounding = append(e.sounding, notes...)
	return notes
}

// OnClockLow returns every sounding note so it can be stopped
func (e *Engine) OnClockLow() []Note {
	notes := e.sounding
	e.sounding = nil
	return notes
}

// Sounding returns a copy of the notes started and not yet stopped
func (e *Engine) Sounding() []Note {
	return slices.Clone(e.sounding)
}

// SetRowActivations replaces every row's step pattern. Rows whose length
// changes are resized first so their position carries over.
func (e *Engine) SetRowActivations(patterns [][]bool) error {
	if len(patterns) != NumRows {
		return errors.Wrapf(ErrInvalidRow, "got %d patterns for %d rows", len(patterns), NumRows)
	}
	for i, p := range patterns {
		row := e.rows[i]
		if row.Len() != len(p) {
			row.Resize(len(p), false)
		}
		row.SetData(p)
	}
	return nil
}

// RowActivations returns a copy of every row's pattern
func (e *Engine) RowActivations() [][]bool {
	out := make([][]bool, NumRows)
	for i, row := range e.rows {
		out[i] = row.Data()
	}
	return out
}

// PlayingSteps returns the step each row played on the last high edge
func (e *Engine) PlayingSteps() [NumRows]int {
	return e.playing
}

func (e *Engine) SetHoldNotesEnabled(enabled bool) {
	e.arp.SetHoldNotesEnabled(enabled)
}

func (e *Engine) SetRowActive(row int, active bool) error {
	return e.arp.SetRowActive(row, active)
}

func (e *Engine) SetOrdering(o NoteOrdering) {
	e.arp.SetOrdering(o)
}

func (e *Engine) SetWrapping(w NoteWrapping) {
	e.arp.SetWrapping(w)
}

// NotesForRows returns the notes currently assigned to each row
func (e *Engine) NotesForRows() [NumRows][]Note {
	return e.arp.NotesForRows()
}
