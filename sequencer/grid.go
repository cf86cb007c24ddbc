package sequencer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Row lengths offered by the interfaces
const (
	MinRowLength     = 2
	MaxRowLength     = 8
	DefaultRowLength = 4
)

// CreateDistribution returns a shuffled permutation of 0..n-1. Used as step
// thresholds: a step is on while its threshold is below the density, so the
// lowest thresholds switch on first as density rises.
func CreateDistribution(n int, rng *rand.Rand) []int {
	if n <= 0 {
		return []int{}
	}
	return rng.Perm(n)
}

// SetActivationsForDensity sets active[i] = thresholds[i] < density
func SetActivationsForDensity(active []bool, thresholds []int, density int) {
	mustMatch(active, thresholds)
	for i, t := range thresholds {
		active[i] = t < density
	}
}

// ToggleStep sets step index to on by swapping its threshold with the one
// sitting exactly at the new density. Every other step keeps its state and
// thresholds stays a permutation. Returns false if the step already had the
// requested state.
func ToggleStep(thresholds []int, active []bool, index int, on bool) bool {
	mustMatch(active, thresholds)
	if active[index] == on {
		return false
	}

	density := countActive(active)
	if on {
		density++
	} else {
		density--
	}
	// turning on takes the lowest inactive threshold (== old density),
	// turning off gives up the highest active one (== new density)
	target := density
	if on {
		target = density - 1
	}

	other := slices.Index(thresholds, target)
	if other < 0 {
		panic(fmt.Sprintf("sequencer: no step with threshold %d in %v", target, thresholds))
	}
	thresholds[index], thresholds[other] = thresholds[other], thresholds[index]
	active[index] = on
	return true
}

// RegeneratePreservingActiveSteps builds a new random threshold permutation
// that reproduces exactly the given activation set. Steps are replayed in a
// random order so the new thresholds don't cluster.
func RegeneratePreservingActiveSteps(current []bool, rng *rand.Rand) ([]bool, []int) {
	n := len(current)
	thresholds := CreateDistribution(n, rng)
	active := make([]bool, n)
	SetActivationsForDensity(active, thresholds, 0)

	for _, i := range rng.Perm(n) {
		ToggleStep(thresholds, active, i, current[i])
	}
	return active, thresholds
}

// AppendSteps grows row to newLength steps. The new steps start off and take
// the largest thresholds (shuffled among themselves), so raising the density
// reaches them last and the existing pattern is kept.
func AppendSteps(active []bool, thresholds []int, rowLengths []int, row, newLength int, rng *rand.Rand) ([]bool, []int, []int) {
	mustMatch(active, thresholds)
	oldLength := rowLengths[row]
	if newLength <= oldLength {
		return active, thresholds, rowLengths
	}
	added := newLength - oldLength
	total := len(thresholds)

	newThresholds := make([]int, added)
	for i, p := range rng.Perm(added) {
		newThresholds[i] = total + p
	}

	at, _ := GridIndexToFlatIndex(row, 0, rowLengths)
	at += oldLength

	active = slices.Insert(active, at, make([]bool, added)...)
	thresholds = slices.Insert(thresholds, at, newThresholds...)
	rowLengths = slices.Clone(rowLengths)
	rowLengths[row] = newLength
	return active, thresholds, rowLengths
}

// RemoveSteps shrinks row to newLength steps. The remaining thresholds are
// re-ranked to 0..n-1 keeping their order, which keeps every remaining
// step's state; the new density is the remaining active count.
func RemoveSteps(active []bool, thresholds []int, rowLengths []int, row, newLength int) ([]bool, []int, []int) {
	mustMatch(active, thresholds)
	oldLength := rowLengths[row]
	if newLength >= oldLength {
		return active, thresholds, rowLengths
	}

	start, _ := GridIndexToFlatIndex(row, 0, rowLengths)
	from, to := start+newLength, start+oldLength

	active = append(slices.Clone(active[:from]), active[to:]...)
	kept := append(slices.Clone(thresholds[:from]), thresholds[to:]...)

	rowLengths = slices.Clone(rowLengths)
	rowLengths[row] = newLength
	return active, rerank(kept), rowLengths
}

// rerank replaces each value with its rank, turning any set of distinct ints
// into a permutation of 0..n-1 with the same order.
func rerank(values []int) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) bool { return values[a] < values[b] })

	ranked := make([]int, len(values))
	for rank, i := range order {
		ranked[i] = rank
	}
	return ranked
}

// Flatten joins per-row slices into one
func Flatten[T any](rows [][]T) []T {
	var flat []T
	for _, r := range rows {
		flat = append(flat, r...)
	}
	return flat
}

// Unflatten splits flat into rows of the given lengths
func Unflatten[T any](flat []T, rowLengths []int) [][]T {
	rows := make([][]T, len(rowLengths))
	at := 0
	for i, n := range rowLengths {
		rows[i] = slices.Clone(flat[at : at+n])
		at += n
	}
	return rows
}

// FlatIndexToGridIndex returns the row and step of a flat index. Rows of
// length zero never own an index.
func FlatIndexToGridIndex(flat int, rowLengths []int) (row, step int, ok bool) {
	if flat < 0 {
		return 0, 0, false
	}
	for r, n := range rowLengths {
		if flat < n {
			return r, flat, true
		}
		flat -= n
	}
	return 0, 0, false
}

// GridIndexToFlatIndex is the inverse of FlatIndexToGridIndex. A step equal
// to the row length is accepted so callers can find the end of a row.
func GridIndexToFlatIndex(row, step int, rowLengths []int) (int, bool) {
	if row < 0 || row >= len(rowLengths) || step < 0 || step > rowLengths[row] {
		return 0, false
	}
	flat := step
	for _, n := range rowLengths[:row] {
		flat += n
	}
	return flat, true
}

func countActive(active []bool) int {
	n := 0
	for _, a := range active {
		if a {
			n++
		}
	}
	return n
}

func mustMatch(active []bool, thresholds []int) {
	if len(active) != len(thresholds) {
		panic(fmt.Sprintf("sequencer: %d activations but %d thresholds", len(active), len(thresholds)))
	}
}

// GridActivations is the editable step grid. Activations and thresholds
// are stored flat across all rows; the density is the number of steps on.
type GridActivations struct {
	rowLengths []int
	active     []bool
	thresholds []int
	density    int
	rng        *rand.Rand
}

// NewGridActivations creates numRows rows of rowLength steps, all off, with a
// random threshold distribution.
func NewGridActivations(numRows, rowLength int, rng *rand.Rand) *GridActivations {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	lengths := make([]int, numRows)
	for i := range lengths {
		lengths[i] = rowLength
	}
	total := numRows * rowLength
	g := &GridActivations{
		rowLengths: lengths,
		active:     make([]bool, total),
		thresholds: CreateDistribution(total, rng),
		rng:        rng,
	}
	return g
}

func (g *GridActivations) NumRows() int {
	return len(g.rowLengths)
}

// NumSteps is the total step count across all rows
func (g *GridActivations) NumSteps() int {
	return len(g.active)
}

func (g *GridActivations) RowLength(row int) int {
	if row < 0 || row >= len(g.rowLengths) {
		return 0
	}
	return g.rowLengths[row]
}

// Get reports whether a step is on. Out of range steps are off.
func (g *GridActivations) Get(row, step int) bool {
	if step >= g.RowLength(row) {
		return false
	}
	i, ok := GridIndexToFlatIndex(row, step, g.rowLengths)
	return ok && g.active[i]
}

// Set switches one step without disturbing any other; the density follows.
func (g *GridActivations) Set(row, step int, on bool) (bool, error) {
	if row < 0 || row >= len(g.rowLengths) {
		return false, errors.Wrapf(ErrInvalidRow, "row %d", row)
	}
	if step < 0 || step >= g.rowLengths[row] {
		return false, errors.Wrapf(ErrInvalidStep, "row %d step %d", row, step)
	}
	i, _ := GridIndexToFlatIndex(row, step, g.rowLengths)
	changed := ToggleStep(g.thresholds, g.active, i, on)
	g.density = countActive(g.active)
	return changed, nil
}

// Toggle flips one step
func (g *GridActivations) Toggle(row, step int) error {
	_, err := g.Set(row, step, !g.Get(row, step))
	return err
}

// Density returns the number of steps that are on
func (g *GridActivations) Density() int {
	return g.density
}

// SetDensity switches on the density lowest-threshold steps
func (g *GridActivations) SetDensity(density int) {
	if density < 0 {
		density = 0
	}
	if density > len(g.active) {
		density = len(g.active)
	}
	g.density = density
	SetActivationsForDensity(g.active, g.thresholds, density)
}

// NormalizedDensity returns the density as a fraction of all steps
func (g *GridActivations) NormalizedDensity() float64 {
	if len(g.active) == 0 {
		return 0
	}
	return float64(g.density) / float64(len(g.active))
}

// SetNormalizedDensity sets the density from a 0-1 fraction
func (g *GridActivations) SetNormalizedDensity(d float64) {
	if math.IsNaN(d) {
		return
	}
	g.SetDensity(int(math.Round(d * float64(len(g.active)))))
}

// SetRowLength grows or shrinks a row. Existing steps keep their state.
func (g *GridActivations) SetRowLength(row, length int) error {
	if row < 0 || row >= len(g.rowLengths) {
		return errors.Wrapf(ErrInvalidRow, "row %d", row)
	}
	if length < 1 {
		return errors.Wrapf(ErrInvalidLength, "row %d length %d", row, length)
	}
	switch {
	case length > g.rowLengths[row]:
		g.active, g.thresholds, g.rowLengths = AppendSteps(g.active, g.thresholds, g.rowLengths, row, length, g.rng)
	case length < g.rowLengths[row]:
		g.active, g.thresholds, g.rowLengths = RemoveSteps(g.active, g.thresholds, g.rowLengths, row, length)
	}
	g.density = countActive(g.active)
	return nil
}

// Regenerate draws a new threshold distribution that keeps the steps that
// are on now.
func (g *GridActivations) Regenerate() {
	g.active, g.thresholds = RegeneratePreservingActiveSteps(g.active, g.rng)
	g.density = countActive(g.active)
}

// Randomize draws a new distribution and reapplies the current density,
// giving a different pattern with the same number of steps on.
func (g *GridActivations) Randomize() {
	g.thresholds = CreateDistribution(len(g.active), g.rng)
	SetActivationsForDensity(g.active, g.thresholds, g.density)
}

// RowActivations returns one pattern per row
func (g *GridActivations) RowActivations() [][]bool {
	return Unflatten(g.active, g.rowLengths)
}

// Thresholds returns a copy of the flat threshold array
func (g *GridActivations) Thresholds() []int {
	return slices.Clone(g.thresholds)
}
