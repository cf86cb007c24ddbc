package clock

import (
	"github.com/pkg/errors"
)

// ErrInvalidSampleRate is returned by SetRate for a non-positive sample rate
// or a negative frequency.
var ErrInvalidSampleRate = errors.New("clock: invalid rate")

// Edge is what a single Tick produced
type Edge int

const (
	NoEdge  Edge = iota
	Rising       // gate went high
	Falling      // gate went low
)

func (e Edge) String() string {
	switch e {
	case Rising:
		return "high"
	case Falling:
		return "low"
	default:
		return "none"
	}
}

// Clock is a phase accumulator gate. Each Tick advances the phase by
// frequency/sampleRate and reports when the gate crosses the duty cycle.
//
// The phase is wrapped at most once per Tick, so a phase increment of 1.0 or
// more will not fully unwrap. Callers keep frequency below sampleRate.
type Clock struct {
	dutyCycle float64
	gateOn    bool
	phase     float64
	phaseInc  float64
}

// New returns a clock with a 50% duty cycle and a phase increment of 0.1
func New() *Clock {
	return &Clock{
		dutyCycle: 0.5,
		phaseInc:  0.1,
	}
}

// SetRate sets the phase increment to frequency/sampleRate.
// Invalid values leave the clock untouched.
func (c *Clock) SetRate(frequency, sampleRate float64) error {
	if sampleRate <= 0 {
		return errors.Wrapf(ErrInvalidSampleRate, "sample rate %v", sampleRate)
	}
	if frequency < 0 {
		return errors.Wrapf(ErrInvalidSampleRate, "frequency %v", frequency)
	}
	c.phaseInc = frequency / sampleRate
	return nil
}

// SetDutyCycle sets the fraction of each period the gate is high (clamped to 0-1)
func (c *Clock) SetDutyCycle(duty float64) {
	if duty < 0 {
		duty = 0
	}
	if duty > 1 {
		duty = 1
	}
	c.dutyCycle = duty
}

// DutyCycle returns the current duty cycle
func (c *Clock) DutyCycle() float64 {
	return c.dutyCycle
}

// Phase returns the current phase
func (c *Clock) Phase() float64 {
	return c.phase
}

// GateOn reports the current gate state
func (c *Clock) GateOn() bool {
	return c.gateOn
}

// Reset zeroes the phase. The gate state is kept so the next Tick still
// reports an edge only on a real change.
func (c *Clock) Reset() {
	c.phase = 0
}

// Tick advances the clock by one sample and returns the edge, if any
func (c *Clock) Tick() Edge {
	c.phase += c.phaseInc
	if c.phase > 1.0 {
		c.phase -= 1.0
	}

	gateOn := c.phase <= c.dutyCycle
	if gateOn == c.gateOn {
		return NoEdge
	}
	c.gateOn = gateOn
	if gateOn {
		return Rising
	}
	return Falling
}
