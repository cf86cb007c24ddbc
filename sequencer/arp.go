package sequencer

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Row is one sequencer lane. Notes is rebuilt from the held notes every time
// something that affects the mapping changes; it is never edited in place.
type Row struct {
	Active   bool
	Notes    []Note
	rotation int // which of Notes plays next
}

// NoteAssigner keeps track of the held notes, assigns them to rows and hands
// out the next note for a row when that row fires.
type NoteAssigner struct {
	activeNotes []Slot
	rows        [NumRows]Row
	ordering    NoteOrdering
	wrapping    NoteWrapping
	hold        bool
}

// NewNoteAssigner returns an assigner with every row active, lowest-first
// ordering and fold wrapping.
func NewNoteAssigner() *NoteAssigner {
	a := &NoteAssigner{
		ordering: LowestFirst,
		wrapping: Fold,
	}
	for i := range a.rows {
		a.rows[i].Active = true
	}
	return a
}

// NoteOn adds a held note. A hole left by hold mode is refilled before the
// list grows, so pinned rows get a note back first.
func (a *NoteAssigner) NoteOn(number, velocity int) {
	n := Note{Number: number, Velocity: velocity}

	if hole := slices.IndexFunc(a.activeNotes, Slot.IsEmpty); hole >= 0 {
		a.activeNotes[hole] = Occupied(n)
	} else {
		switch a.ordering {
		case LowestFirst:
			pos := slices.IndexFunc(a.activeNotes, func(s Slot) bool {
				held, ok := s.Note()
				return ok && n.Less(held)
			})
			if pos < 0 {
				a.activeNotes = append(a.activeNotes, Occupied(n))
			} else {
				a.activeNotes = slices.Insert(a.activeNotes, pos, Occupied(n))
			}
		default:
			a.activeNotes = append(a.activeNotes, Occupied(n))
		}
	}

	a.updateNoteToRowMapping()
}

// NoteOff releases every held copy of number. With hold on the slots become
// holes until nothing at all is held; with hold off they are removed along
// with any leftover holes.
func (a *NoteAssigner) NoteOff(number int) {
	if a.hold {
		for i, s := range a.activeNotes {
			if held, ok := s.Note(); ok && held.Number == number {
				a.activeNotes[i] = Empty()
			}
		}
		if a.allActiveNotesEmpty() {
			a.activeNotes = a.activeNotes[:0]
		}
	} else {
		kept := a.activeNotes[:0]
		for _, s := range a.activeNotes {
			if held, ok := s.Note(); ok && held.Number != number {
				kept = append(kept, s)
			}
		}
		a.activeNotes = kept
	}

	a.updateNoteToRowMapping()
}

// NextNotes advances the rotation of every triggered row and returns the
// notes to start. Inactive rows and rows without notes stay silent.
func (a *NoteAssigner) NextNotes(triggered []int) []Note {
	var notes []Note
	for _, r := range triggered {
		if !a.RowHasNoteAndActive(r) {
			continue
		}
		row := &a.rows[r]
		if row.rotation >= len(row.Notes) {
			row.rotation %= len(row.Notes)
		}
		notes = append(notes, row.Notes[row.rotation])
		row.rotation = (row.rotation + 1) % len(row.Notes)
	}
	return notes
}

// RowHasNoteAndActive reports whether row r would play on a trigger
func (a *NoteAssigner) RowHasNoteAndActive(r int) bool {
	return r >= 0 && r < NumRows && a.rows[r].Active && len(a.rows[r].Notes) > 0
}

// SetRowActive turns a row on or off and reassigns notes
func (a *NoteAssigner) SetRowActive(r int, active bool) error {
	if r < 0 || r >= NumRows {
		return errors.Wrapf(ErrInvalidRow, "row %d", r)
	}
	a.rows[r].Active = active
	a.updateNoteToRowMapping()
	return nil
}

// RowActive reports whether row r is on
func (a *NoteAssigner) RowActive(r int) bool {
	return r >= 0 && r < NumRows && a.rows[r].Active
}

// ActiveRowIndices returns the indices of the active rows in ascending order
func (a *NoteAssigner) ActiveRowIndices() []int {
	var idx []int
	for i, row := range a.rows {
		if row.Active {
			idx = append(idx, i)
		}
	}
	return idx
}

// NumActiveRows returns how many rows are on
func (a *NoteAssigner) NumActiveRows() int {
	n := 0
	for _, row := range a.rows {
		if row.Active {
			n++
		}
	}
	return n
}

func (a *NoteAssigner) SetHoldNotesEnabled(enabled bool) {
	a.hold = enabled
}

func (a *NoteAssigner) HoldNotesEnabled() bool {
	return a.hold
}

func (a *NoteAssigner) SetOrdering(o NoteOrdering) {
	a.ordering = o
	a.updateNoteToRowMapping()
}

func (a *NoteAssigner) Ordering() NoteOrdering {
	return a.ordering
}

func (a *NoteAssigner) SetWrapping(w NoteWrapping) {
	a.wrapping = w
	a.updateNoteToRowMapping()
}

func (a *NoteAssigner) Wrapping() NoteWrapping {
	return a.wrapping
}

// ActiveNotes returns a copy of the held note slots, holes included
func (a *NoteAssigner) ActiveNotes() []Slot {
	return slices.Clone(a.activeNotes)
}

// NotesForRows returns a copy of every row's assigned notes
func (a *NoteAssigner) NotesForRows() [NumRows][]Note {
	var out [NumRows][]Note
	for i, row := range a.rows {
		out[i] = slices.Clone(row.Notes)
	}
	return out
}

func (a *NoteAssigner) allActiveNotesEmpty() bool {
	return slices.IndexFunc(a.activeNotes, func(s Slot) bool { return !s.IsEmpty() }) < 0
}

// updateNoteToRowMapping rebuilds every row's notes from the held notes.
// Calling it twice in a row gives the same result.
func (a *NoteAssigner) updateNoteToRowMapping() {
	for i := range a.rows {
		a.rows[i].Notes = a.rows[i].Notes[:0]
	}

	activeRows := a.ActiveRowIndices()
	for i, s := range a.activeNotes {
		r, ok := mapNoteIndexToRow(i, activeRows, a.wrapping)
		if !ok {
			continue
		}
		if n, ok := s.Note(); ok {
			a.rows[r].Notes = append(a.rows[r].Notes, n)
		}
	}
}
