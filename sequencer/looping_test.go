package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func next[T any](t *testing.T, s *LoopingSequence[T]) T {
	t.Helper()
	v, ok := s.Next()
	assert.True(t, ok)
	return v
}

func TestLoopingSequence(t *testing.T) {
	s := NewLoopingSequence([]int{10, 20, 30})

	assert.Equal(t, 10, next(t, s))
	assert.Equal(t, 20, next(t, s))
	assert.Equal(t, 30, next(t, s))
	assert.Equal(t, 10, next(t, s))
	s.Reset()
	assert.Equal(t, 10, next(t, s))
}

func TestLoopingSequenceEmptyIsSilent(t *testing.T) {
	s := NewLoopingSequence[bool](nil)
	_, ok := s.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestLoopingSequenceCopiesInput(t *testing.T) {
	data := []int{1, 2}
	s := NewLoopingSequence(data)
	data[0] = 99
	assert.Equal(t, []int{1, 2}, s.Data())
}

func TestLoopingSequenceResizeKeepsPosition(t *testing.T) {
	s := NewLoopingSequence([]int{1, 2, 3, 4, 5, 6, 7, 8})
	for i := 0; i < 6; i++ {
		s.Next()
	}
	assert.Equal(t, 6, s.Cursor())

	// 6 mod 4, not clamped to 3
	s.Resize(4, 0)
	assert.Equal(t, 2, s.Cursor())
	assert.Equal(t, []int{1, 2, 3, 4}, s.Data())

	s.Resize(6, -1)
	assert.Equal(t, 2, s.Cursor())
	assert.Equal(t, []int{1, 2, 3, 4, -1, -1}, s.Data())

	s.Resize(0, 0)
	assert.Equal(t, 0, s.Cursor())
	_, ok := s.Next()
	assert.False(t, ok)
}

func TestLoopingSequenceSetDataKeepsCursor(t *testing.T) {
	s := NewLoopingSequence([]bool{true, false, true})
	s.Next()
	s.SetData([]bool{false, false, true})
	assert.Equal(t, 1, s.Cursor())
	assert.False(t, next(t, s))
	assert.True(t, next(t, s))
}
