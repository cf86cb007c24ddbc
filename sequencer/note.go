package sequencer

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/pkg/errors"
)

// NumRows is the number of sequencer rows
const NumRows = 4

var (
	ErrInvalidRow    = errors.New("invalid row")
	ErrInvalidStep   = errors.New("invalid step")
	ErrInvalidLength = errors.New("invalid row length")
	ErrInvalidMode   = errors.New("invalid mode")
)

// Note is a held or playing MIDI note. Two notes are the same note if they
// share a number, whatever their velocity.
type Note struct {
	Number   int `json:"number"`
	Velocity int `json:"velocity"`
}

// Equal compares note numbers only
func (n Note) Equal(o Note) bool {
	return n.Number == o.Number
}

// Less orders by note number
func (n Note) Less(o Note) bool {
	return n.Number < o.Number
}

// Name returns the pitch name with its octave
func (n Note) Name() string {
	if n.Number < 0 || n.Number > 127 {
		return fmt.Sprintf("#%d", n.Number)
	}
	return gomidi.Note(uint8(n.Number)).String()
}

func (n Note) String() string {
	return fmt.Sprintf("%d", n.Number)
}

// Slot is one position in the held note list. An empty slot is a hole left
// behind by a released note while hold is on.
type Slot struct {
	note     Note
	occupied bool
}

// Occupied returns a slot holding n
func Occupied(n Note) Slot {
	return Slot{note: n, occupied: true}
}

// Empty returns a hole
func Empty() Slot {
	return Slot{}
}

// Note returns the held note and whether the slot holds one
func (s Slot) Note() (Note, bool) {
	return s.note, s.occupied
}

// IsEmpty reports whether the slot is a hole
func (s Slot) IsEmpty() bool {
	return !s.occupied
}

func (s Slot) String() string {
	if !s.occupied {
		return "_"
	}
	return s.note.String()
}

// NoteOrdering decides where a new note goes in the held note list
type NoteOrdering int

const (
	OldestFirst NoteOrdering = iota
	LowestFirst
)

var orderingNames = []string{"oldest", "lowest"}

func (o NoteOrdering) String() string {
	if int(o) < 0 || int(o) >= len(orderingNames) {
		return fmt.Sprintf("ordering(%d)", int(o))
	}
	return orderingNames[o]
}

// Next cycles to the following ordering
func (o NoteOrdering) Next() NoteOrdering {
	return NoteOrdering((int(o) + 1) % len(orderingNames))
}

// ParseOrdering parses "oldest" or "lowest"
func ParseOrdering(s string) (NoteOrdering, error) {
	for i, name := range orderingNames {
		if strings.EqualFold(s, name) {
			return NoteOrdering(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidMode, "ordering %q", s)
}

// NoteWrapping decides how notes beyond the number of active rows are placed
type NoteWrapping int

const (
	WrapNone NoteWrapping = iota
	Wrap
	Fold
	StackHigh
	StackLow
)

var wrappingNames = []string{"none", "wrap", "fold", "stack-high", "stack-low"}

func (w NoteWrapping) String() string {
	if int(w) < 0 || int(w) >= len(wrappingNames) {
		return fmt.Sprintf("wrapping(%d)", int(w))
	}
	return wrappingNames[w]
}

// Next cycles to the following wrapping mode
func (w NoteWrapping) Next() NoteWrapping {
	return NoteWrapping((int(w) + 1) % len(wrappingNames))
}

// ParseWrapping parses one of none, wrap, fold, stack-high, stack-low
func ParseWrapping(s string) (NoteWrapping, error) {
	for i, name := range wrappingNames {
		if strings.EqualFold(s, name) {
			return NoteWrapping(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidMode, "wrapping %q", s)
}
