package sequencer

// Note wrapping functions. Each maps the index of a held note onto a
// zero-based active row position in [0, max]. With max == 0 they all
// return 0.

// WrapIndex wraps i around max+1 rows
func WrapIndex(i, max int) int {
	if max <= 0 {
		return 0
	}
	return i % (max + 1)
}

// FoldIndex bounces i back and forth over [0, max], playing each end twice:
//
//	max = 2:  0 1 2 2 1 0 0 1 2 2 1 0 ...
//
// It is periodic, so every i >= 0 has a defined row.
func FoldIndex(i, max int) int {
	if max <= 0 {
		return 0
	}
	period := 2 * (max + 1)
	a := i % period
	if a <= max {
		return a
	}
	return period - 1 - a
}

// StackHighIndex piles everything beyond max onto the top row
func StackHighIndex(i, max int) int {
	if max <= 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// StackLowIndex piles everything beyond max onto the bottom row
func StackLowIndex(i, max int) int {
	if max <= 0 {
		return 0
	}
	if i > max {
		return 0
	}
	return i
}

// noneIndex leaves notes at or past max unmapped
func noneIndex(i, max int) (int, bool) {
	if max <= 0 {
		return 0, true
	}
	if i < max {
		return i, true
	}
	return 0, false
}

// mapNoteIndexToRow returns the real row index for the note at noteIndex,
// or false if the note is not assigned to any row.
func mapNoteIndexToRow(noteIndex int, activeRows []int, mode NoteWrapping) (int, bool) {
	if len(activeRows) == 0 {
		return 0, false
	}
	max := len(activeRows) - 1

	var pos int
	switch mode {
	case Wrap:
		pos = WrapIndex(noteIndex, max)
	case Fold:
		pos = FoldIndex(noteIndex, max)
	case StackHigh:
		pos = StackHighIndex(noteIndex, max)
	case StackLow:
		pos = StackLowIndex(noteIndex, max)
	default:
		p, ok := noneIndex(noteIndex, max)
		if !ok {
			return 0, false
		}
		pos = p
	}
	return activeRows[pos], true
}
