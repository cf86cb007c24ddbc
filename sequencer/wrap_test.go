package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapIndex(t *testing.T) {
	assert.Equal(t, 1, WrapIndex(5, 3))
	assert.Equal(t, 0, WrapIndex(5, 4))

	for max := 0; max < 8; max++ {
		for i := 0; i < 40; i++ {
			w := WrapIndex(i, max)
			assert.GreaterOrEqual(t, w, 0)
			assert.LessOrEqual(t, w, max)
			assert.Equal(t, w, WrapIndex(i+max+1, max), "i=%d max=%d", i, max)
		}
	}
}

func TestFoldIndex(t *testing.T) {
	var got []int
	for i := 0; i <= 8; i++ {
		got = append(got, FoldIndex(i, 2))
	}
	assert.Equal(t, []int{0, 1, 2, 2, 1, 0, 0, 1, 2}, got)

	got = got[:0]
	for i := 0; i < 8; i++ {
		got = append(got, FoldIndex(i, 1))
	}
	assert.Equal(t, []int{0, 1, 1, 0, 0, 1, 1, 0}, got)
}

func TestFoldIndexStaysInRange(t *testing.T) {
	for max := 0; max < 8; max++ {
		for i := 0; i < 100; i++ {
			f := FoldIndex(i, max)
			assert.GreaterOrEqual(t, f, 0)
			assert.LessOrEqual(t, f, max)
		}
	}
}

func TestStackIndex(t *testing.T) {
	for max := 0; max < 6; max++ {
		for i := 0; i < 12; i++ {
			assert.Equal(t, min(i, max), StackHighIndex(i, max))
			want := i
			if i > max {
				want = 0
			}
			assert.Equal(t, want, StackLowIndex(i, max))
		}
	}
}

func TestZeroMaxAlwaysMapsToZero(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, WrapIndex(i, 0))
		assert.Equal(t, 0, FoldIndex(i, 0))
		assert.Equal(t, 0, StackHighIndex(i, 0))
		assert.Equal(t, 0, StackLowIndex(i, 0))
		for _, mode := range []NoteWrapping{WrapNone, Wrap, Fold, StackHigh, StackLow} {
			r, ok := mapNoteIndexToRow(i, []int{2}, mode)
			assert.True(t, ok)
			assert.Equal(t, 2, r)
		}
	}
}

func TestMapNoteIndexToRow(t *testing.T) {
	active := []int{0, 2, 3}

	r, ok := mapNoteIndexToRow(1, active, WrapNone)
	assert.True(t, ok)
	assert.Equal(t, 2, r)

	_, ok = mapNoteIndexToRow(2, active, WrapNone)
	assert.False(t, ok)

	r, _ = mapNoteIndexToRow(3, active, Wrap)
	assert.Equal(t, 0, r)

	r, _ = mapNoteIndexToRow(3, active, Fold)
	assert.Equal(t, 3, r)

	r, _ = mapNoteIndexToRow(7, active, StackHigh)
	assert.Equal(t, 3, r)

	r, _ = mapNoteIndexToRow(7, active, StackLow)
	assert.Equal(t, 0, r)

	_, ok = mapNoteIndexToRow(0, nil, Fold)
	assert.False(t, ok)
}

func TestParseModes(t *testing.T) {
	o, err := ParseOrdering("Oldest")
	assert.NoError(t, err)
	assert.Equal(t, OldestFirst, o)
	assert.Equal(t, LowestFirst, o.Next())
	assert.Equal(t, OldestFirst, LowestFirst.Next())

	w, err := ParseWrapping("stack-high")
	assert.NoError(t, err)
	assert.Equal(t, StackHigh, w)
	assert.Equal(t, WrapNone, StackLow.Next())

	_, err = ParseWrapping("spiral")
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = ParseOrdering("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
