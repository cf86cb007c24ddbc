package sequencer

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func isPermutation(t *testing.T, thresholds []int) {
	t.Helper()
	sorted := append([]int(nil), thresholds...)
	sort.Ints(sorted)
	for i, v := range sorted {
		require.Equal(t, i, v, "thresholds %v are not a permutation", thresholds)
	}
}

func consistent(t *testing.T, active []bool, thresholds []int, density int) {
	t.Helper()
	for i := range active {
		require.Equal(t, thresholds[i] < density, active[i], "step %d threshold %d density %d", i, thresholds[i], density)
	}
}

func TestCreateDistribution(t *testing.T) {
	d := CreateDistribution(16, testRand())
	assert.Len(t, d, 16)
	isPermutation(t, d)
	assert.Empty(t, CreateDistribution(0, testRand()))
}

func TestDensityProjectionIdempotent(t *testing.T) {
	thresholds := CreateDistribution(12, testRand())
	a := make([]bool, 12)
	b := make([]bool, 12)

	SetActivationsForDensity(a, thresholds, 5)
	copy(b, a)
	SetActivationsForDensity(b, thresholds, 5)
	assert.Equal(t, a, b)
	assert.Equal(t, 5, countActive(a))
	consistent(t, a, thresholds, 5)
}

func TestDensityLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		SetActivationsForDensity(make([]bool, 3), []int{0, 1}, 1)
	})
	assert.Panics(t, func() {
		ToggleStep([]int{0, 1, 2}, make([]bool, 2), 0, true)
	})
}

func TestToggleStep(t *testing.T) {
	rng := testRand()
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(20)
		thresholds := CreateDistribution(n, rng)
		active := make([]bool, n)
		density := rng.Intn(n + 1)
		SetActivationsForDensity(active, thresholds, density)

		index := rng.Intn(n)
		want := !active[index]
		before := append([]bool(nil), active...)

		require.True(t, ToggleStep(thresholds, active, index, want))
		assert.Equal(t, want, active[index])
		isPermutation(t, thresholds)

		delta := 1
		if !want {
			delta = -1
		}
		assert.Equal(t, density+delta, countActive(active))
		consistent(t, active, thresholds, density+delta)

		for i := range active {
			if i != index {
				assert.Equal(t, before[i], active[i], "step %d changed", i)
			}
		}
	}
}

func TestToggleStepNoop(t *testing.T) {
	thresholds := []int{2, 0, 1}
	active := make([]bool, 3)
	SetActivationsForDensity(active, thresholds, 1)

	assert.False(t, ToggleStep(thresholds, active, 1, true))
	assert.False(t, ToggleStep(thresholds, active, 0, false))
	assert.Equal(t, []int{2, 0, 1}, thresholds)
}

func TestRegeneratePreservingActiveSteps(t *testing.T) {
	rng := testRand()
	current := []bool{true, false, false, true, true, false, false, false, true}

	active, thresholds := RegeneratePreservingActiveSteps(current, rng)
	assert.Equal(t, current, active)
	isPermutation(t, thresholds)
	consistent(t, active, thresholds, 4)
}

func TestAppendSteps(t *testing.T) {
	rng := testRand()
	rowLengths := []int{3, 2, 4}
	thresholds := CreateDistribution(9, rng)
	active := make([]bool, 9)
	SetActivationsForDensity(active, thresholds, 4)
	before := Unflatten(active, rowLengths)

	active, thresholds, rowLengths = AppendSteps(active, thresholds, rowLengths, 1, 5, rng)

	assert.Equal(t, []int{3, 5, 4}, rowLengths)
	require.Len(t, active, 12)
	isPermutation(t, thresholds)
	consistent(t, active, thresholds, 4)

	rows := Unflatten(active, rowLengths)
	assert.Equal(t, before[0], rows[0])
	assert.Equal(t, before[2], rows[2])
	assert.Equal(t, before[1], rows[1][:2])
	assert.Equal(t, []bool{false, false, false}, rows[1][2:])

	// the new steps hold the largest thresholds, so they come on last
	newThresholds := Unflatten(thresholds, rowLengths)[1][2:]
	sort.Ints(newThresholds)
	assert.Equal(t, []int{9, 10, 11}, newThresholds)

	SetActivationsForDensity(active, thresholds, 9)
	assert.Equal(t, []bool{false, false, false}, Unflatten(active, rowLengths)[1][2:])
	SetActivationsForDensity(active, thresholds, 12)
	assert.Equal(t, []bool{true, true, true}, Unflatten(active, rowLengths)[1][2:])
}

func TestRemoveSteps(t *testing.T) {
	rowLengths := []int{4, 4}
	thresholds := []int{0, 5, 2, 7, 1, 6, 3, 4}
	active := make([]bool, 8)
	SetActivationsForDensity(active, thresholds, 4)

	active, thresholds, rowLengths = RemoveSteps(active, thresholds, rowLengths, 0, 2)
	assert.Equal(t, []int{2, 4}, rowLengths)
	isPermutation(t, thresholds)
	assert.Equal(t, []bool{true, false, true, false, true, false}, active)
	consistent(t, active, thresholds, countActive(active))
}

func TestFlattenRoundTrip(t *testing.T) {
	rows := [][]int{{1, 2}, {}, {3}, {4, 5, 6}}
	flat := Flatten(rows)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, flat)
	assert.Equal(t, rows, Unflatten(flat, []int{2, 0, 1, 3}))
}

func TestFlatGridIndexRoundTrip(t *testing.T) {
	cases := [][]int{
		{4, 4, 4, 4},
		{2, 0, 3, 8},
		{0, 0, 1},
		{5},
	}
	for _, rowLengths := range cases {
		total := 0
		for _, n := range rowLengths {
			total += n
		}
		for flat := 0; flat < total; flat++ {
			row, step, ok := FlatIndexToGridIndex(flat, rowLengths)
			require.True(t, ok)
			assert.Less(t, step, rowLengths[row], "zero-length row %d owns index %d", row, flat)
			back, ok := GridIndexToFlatIndex(row, step, rowLengths)
			require.True(t, ok)
			assert.Equal(t, flat, back)
		}
		_, _, ok := FlatIndexToGridIndex(total, rowLengths)
		assert.False(t, ok)
		_, _, ok = FlatIndexToGridIndex(-1, rowLengths)
		assert.False(t, ok)
	}

	row, step, _ := FlatIndexToGridIndex(2, []int{2, 0, 3})
	assert.Equal(t, 2, row)
	assert.Equal(t, 0, step)
}

func TestGridActivations(t *testing.T) {
	g := NewGridActivations(NumRows, 4, testRand())
	assert.Equal(t, 16, g.NumSteps())
	assert.Equal(t, 0, g.Density())

	g.SetNormalizedDensity(0.5)
	assert.Equal(t, 8, g.Density())
	assert.Equal(t, 0.5, g.NormalizedDensity())

	on := 0
	for _, row := range g.RowActivations() {
		on += countActive(row)
	}
	assert.Equal(t, 8, on)

	wasOn := g.Get(1, 2)
	changed, err := g.Set(1, 2, !wasOn)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, !wasOn, g.Get(1, 2))
	if wasOn {
		assert.Equal(t, 7, g.Density())
	} else {
		assert.Equal(t, 9, g.Density())
	}

	require.NoError(t, g.Toggle(1, 2))
	assert.Equal(t, wasOn, g.Get(1, 2))
	assert.Equal(t, 8, g.Density())

	_, err = g.Set(4, 0, true)
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, err = g.Set(0, 4, true)
	assert.ErrorIs(t, err, ErrInvalidStep)
	assert.False(t, g.Get(0, 99))
}

func TestGridDensityClamped(t *testing.T) {
	g := NewGridActivations(2, 3, testRand())
	g.SetDensity(100)
	assert.Equal(t, 6, g.Density())
	g.SetDensity(-3)
	assert.Equal(t, 0, g.Density())
}

func TestGridRowLength(t *testing.T) {
	g := NewGridActivations(NumRows, 4, testRand())
	g.SetDensity(10)
	before := g.RowActivations()

	require.NoError(t, g.SetRowLength(2, 7))
	assert.Equal(t, 7, g.RowLength(2))
	rows := g.RowActivations()
	assert.Equal(t, before[2], rows[2][:4])
	assert.Equal(t, 10, g.Density())
	consistent(t, g.active, g.thresholds, g.Density())

	require.NoError(t, g.SetRowLength(2, 2))
	rows = g.RowActivations()
	assert.Equal(t, before[2][:2], rows[2])
	assert.Equal(t, before[3], rows[3])
	isPermutation(t, g.Thresholds())
	consistent(t, g.active, g.thresholds, g.Density())

	assert.ErrorIs(t, g.SetRowLength(1, 0), ErrInvalidLength)
	assert.ErrorIs(t, g.SetRowLength(9, 3), ErrInvalidRow)
	assert.Equal(t, 4, g.RowLength(1))
}

func TestGridRegenerateKeepsSteps(t *testing.T) {
	g := NewGridActivations(NumRows, 5, testRand())
	g.SetDensity(7)
	before := g.RowActivations()

	g.Regenerate()
	assert.Equal(t, before, g.RowActivations())
	assert.Equal(t, 7, g.Density())
	isPermutation(t, g.Thresholds())

	g.Randomize()
	assert.Equal(t, 7, g.Density())
	consistent(t, g.active, g.thresholds, 7)
}
