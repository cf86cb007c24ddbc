package sequencer

// LoopingSequence plays a slice over and over. Each row of the engine owns
// one for its step pattern.
type LoopingSequence[T any] struct {
	data   []T
	cursor int
}

// NewLoopingSequence copies data and starts at the first element
func NewLoopingSequence[T any](data []T) *LoopingSequence[T] {
	return &LoopingSequence[T]{data: append([]T(nil), data...)}
}

// Next returns the value under the cursor and advances it, wrapping at the
// end. It returns false for an empty sequence.
func (s *LoopingSequence[T]) Next() (T, bool) {
	var zero T
	if len(s.data) == 0 {
		return zero, false
	}
	if s.cursor >= len(s.data) {
		s.cursor %= len(s.data)
	}
	v := s.data[s.cursor]
	s.cursor++
	if s.cursor >= len(s.data) {
		s.cursor = 0
	}
	return v, true
}

// Reset moves the cursor back to the start
func (s *LoopingSequence[T]) Reset() {
	s.cursor = 0
}

// Resize truncates or pads the data to n elements. A cursor that falls past
// the new end is reduced modulo n, so the position in the loop is kept.
func (s *LoopingSequence[T]) Resize(n int, fill T) {
	if n < 0 {
		n = 0
	}
	if n == 0 {
		s.cursor = 0
	} else if s.cursor >= n {
		s.cursor %= n
	}
	if n <= len(s.data) {
		s.data = s.data[:n:n]
		return
	}
	for len(s.data) < n {
		s.data = append(s.data, fill)
	}
}

// SetData replaces the contents without touching the cursor. If the new data
// is shorter, call Resize or Reset first so the cursor stays in range.
func (s *LoopingSequence[T]) SetData(data []T) {
	s.data = append(s.data[:0:0], data...)
}

// Data returns a copy of the contents
func (s *LoopingSequence[T]) Data() []T {
	return append([]T(nil), s.data...)
}

// Len returns the number of elements
func (s *LoopingSequence[T]) Len() int {
	return len(s.data)
}

// Cursor returns the index Next will read
func (s *LoopingSequence[T]) Cursor() int {
	return s.cursor
}
