package sequencer

import (
	"github.com/pkg/errors"
)

// Command is a change requested from outside the timing loop. Commands are
// queued with Runner.Send and applied at the top of the next wake.
type Command interface {
	apply(r *Runner) error
}

// NoteOnCmd holds a note
type NoteOnCmd struct {
	Note     int
	Velocity int
}

func (c NoteOnCmd) apply(r *Runner) error {
	r.engine.NoteOn(c.Note, c.Velocity)
	return nil
}

// NoteOffCmd releases a note
type NoteOffCmd struct {
	Note int
}

func (c NoteOffCmd) apply(r *Runner) error {
	r.engine.NoteOff(c.Note)
	return nil
}

// RowActivationsCmd replaces every row pattern directly, bypassing the grid
type RowActivationsCmd struct {
	Patterns [][]bool
}

func (c RowActivationsCmd) apply(r *Runner) error {
	return r.engine.SetRowActivations(c.Patterns)
}

// SetStepCmd switches one grid step
type SetStepCmd struct {
	Row, Step int
	On        bool
}

func (c SetStepCmd) apply(r *Runner) error {
	if _, err := r.grid.Set(c.Row, c.Step, c.On); err != nil {
		return err
	}
	return r.pushGrid()
}

// ToggleStepCmd flips one grid step
type ToggleStepCmd struct {
	Row, Step int
}

func (c ToggleStepCmd) apply(r *Runner) error {
	if err := r.grid.Toggle(c.Row, c.Step); err != nil {
		return err
	}
	return r.pushGrid()
}

// DensityCmd sets the grid density as a 0-1 fraction
type DensityCmd struct {
	Density float64
}

func (c DensityCmd) apply(r *Runner) error {
	if c.Density < 0 || c.Density > 1 {
		return errors.Errorf("density %v out of range", c.Density)
	}
	r.grid.SetNormalizedDensity(c.Density)
	return r.pushGrid()
}

// DensityStepCmd moves the density by Delta steps
type DensityStepCmd struct {
	Delta int
}

func (c DensityStepCmd) apply(r *Runner) error {
	r.grid.SetDensity(r.grid.Density() + c.Delta)
	return r.pushGrid()
}

// RowLengthCmd resizes a grid row
type RowLengthCmd struct {
	Row, Length int
}

func (c RowLengthCmd) apply(r *Runner) error {
	if err := r.grid.SetRowLength(c.Row, c.Length); err != nil {
		return err
	}
	return r.pushGrid()
}

// RegenerateCmd draws a new distribution keeping the steps that are on
type RegenerateCmd struct{}

func (RegenerateCmd) apply(r *Runner) error {
	r.grid.Regenerate()
	return r.pushGrid()
}

// RandomizeCmd draws a new distribution and keeps only the number of steps
// that are on
type RandomizeCmd struct{}

func (RandomizeCmd) apply(r *Runner) error {
	r.grid.Randomize()
	return r.pushGrid()
}

// HoldCmd turns hold mode on or off
type HoldCmd struct {
	Enabled bool
}

func (c HoldCmd) apply(r *Runner) error {
	r.engine.SetHoldNotesEnabled(c.Enabled)
	return nil
}

// RowActiveCmd turns a row on or off
type RowActiveCmd struct {
	Row    int
	Active bool
}

func (c RowActiveCmd) apply(r *Runner) error {
	return r.engine.SetRowActive(c.Row, c.Active)
}

// OrderingCmd sets the note ordering
type OrderingCmd struct {
	Ordering NoteOrdering
}

func (c OrderingCmd) apply(r *Runner) error {
	r.engine.SetOrdering(c.Ordering)
	return nil
}

// WrappingCmd sets the note wrapping
type WrappingCmd struct {
	Wrapping NoteWrapping
}

func (c WrappingCmd) apply(r *Runner) error {
	r.engine.SetWrapping(c.Wrapping)
	return nil
}

// ClockRateCmd sets the gate frequency in Hz
type ClockRateCmd struct {
	Rate float64
}

func (c ClockRateCmd) apply(r *Runner) error {
	if err := checkRate(c.Rate, r.sampleRate); err != nil {
		return err
	}
	if err := r.clock.SetRate(c.Rate, r.sampleRate); err != nil {
		return err
	}
	r.rate = c.Rate
	return nil
}

// DutyCycleCmd sets the fraction of each clock period the gate is high
type DutyCycleCmd struct {
	Duty float64
}

func (c DutyCycleCmd) apply(r *Runner) error {
	r.clock.SetDutyCycle(c.Duty)
	return nil
}
