package sequencer

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"go-rho/clock"
	"go-rho/debug"
)

// ErrQueueFull is returned by Send when the command queue has no room
var ErrQueueFull = errors.New("command queue full")

// NoteSink receives the notes the engine starts and stops. A failing sink is
// logged and shown in Status.LastError; the loop keeps running.
type NoteSink interface {
	NoteOn(n Note) error
	NoteOff(n Note) error
}

// RunnerConfig sets up a Runner
type RunnerConfig struct {
	SampleRate float64 // loop wakes per second
	Rate       float64 // clock frequency in Hz
	DutyCycle  float64
	RowLength  int
	Density    float64 // 0-1
	Ordering   NoteOrdering
	Wrapping   NoteWrapping
	Hold       bool
	Seed       int64 // 0 picks a random seed
	QueueSize  int
}

// DefaultRunnerConfig wakes 32 times a second with an 8 Hz clock
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		SampleRate: 32,
		Rate:       8,
		DutyCycle:  0.5,
		RowLength:  DefaultRowLength,
		Density:    0.5,
		Ordering:   LowestFirst,
		Wrapping:   Fold,
		QueueSize:  64,
	}
}

// RowStatus is the display state of one row
type RowStatus struct {
	Active   bool   `json:"active"`
	Notes    []Note `json:"notes"`
	Steps    []bool `json:"steps"`
	Playhead int    `json:"playhead"`
}

// Status is a snapshot of the runner, published after every wake that
// changed something.
type Status struct {
	Gate       bool               `json:"gate"`
	Edges      uint64             `json:"edges"`
	Rate       float64            `json:"rate"`
	SampleRate float64            `json:"sampleRate"`
	DutyCycle  float64            `json:"dutyCycle"`
	Density    float64            `json:"density"`
	Hold       bool               `json:"hold"`
	Ordering   string             `json:"ordering"`
	Wrapping   string             `json:"wrapping"`
	Rows       [NumRows]RowStatus `json:"rows"`
	Sounding   []Note             `json:"sounding"`
	HeldNotes  []Note             `json:"heldNotes"`
	LastError  string             `json:"lastError,omitempty"`
}

// Runner is the timing loop. It owns the clock, the engine and the step
// grid; nothing else touches them. Other goroutines talk to it through Send
// and read it through Status.
type Runner struct {
	clock      *clock.Clock
	engine     *Engine
	grid       *GridActivations
	sink       NoteSink
	sampleRate float64
	rate       float64

	commands chan Command
	edges    uint64
	lastErr  error

	status atomic.Pointer[Status]

	// UpdateChan is signalled (without blocking) whenever Status changes
	UpdateChan chan struct{}
}

// NewRunner builds a runner. sink may be nil.
func NewRunner(cfg RunnerConfig, sink NoteSink) (*Runner, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.RowLength < 1 {
		return nil, errors.Wrapf(ErrInvalidLength, "row length %d", cfg.RowLength)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c := clock.New()
	if err := c.SetRate(cfg.Rate, cfg.SampleRate); err != nil {
		return nil, err
	}
	if err := checkRate(cfg.Rate, cfg.SampleRate); err != nil {
		return nil, err
	}
	c.SetDutyCycle(cfg.DutyCycle)

	r := &Runner{
		clock:      c,
		engine:     NewEngine(),
		grid:       NewGridActivations(NumRows, cfg.RowLength, rand.New(rand.NewSource(seed))),
		sink:       sink,
		sampleRate: cfg.SampleRate,
		rate:       cfg.Rate,
		commands:   make(chan Command, cfg.QueueSize),
		UpdateChan: make(chan struct{}, 1),
	}
	r.grid.SetNormalizedDensity(cfg.Density)
	r.engine.SetOrdering(cfg.Ordering)
	r.engine.SetWrapping(cfg.Wrapping)
	r.engine.SetHoldNotesEnabled(cfg.Hold)
	if err := r.pushGrid(); err != nil {
		return nil, err
	}
	r.publish()
	return r, nil
}

// Send queues a command for the next wake. It never blocks.
func (r *Runner) Send(cmd Command) error {
	select {
	case r.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Status returns the latest published snapshot
func (r *Runner) Status() *Status {
	return r.status.Load()
}

// Run wakes SampleRate times a second until ctx is done. On the way out
// every sounding note is stopped.
func (r *Runner) Run(ctx context.Context) {
	period := time.Duration(float64(time.Second) / r.sampleRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	debug.Log("runner", "started period=%v rate=%.2fHz", period, r.rate)
	for {
		select {
		case <-ctx.Done():
			r.stopAll()
			r.publish()
			debug.Log("runner", "stopped after %d edges", r.edges)
			return
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step is one wake of the loop: apply queued commands, tick the clock and
// play or release notes on an edge.
func (r *Runner) Step() {
	changed := r.drain()

	switch edge := r.clock.Tick(); edge {
	case clock.Rising:
		r.edges++
		for _, n := range r.engine.OnClockHigh() {
			r.deliver(n, true)
		}
		debug.LogEvery(64, "clock", "edge=%s", edge)
		changed = true
	case clock.Falling:
		r.edges++
		for _, n := range r.engine.OnClockLow() {
			r.deliver(n, false)
		}
		changed = true
	}

	if changed {
		r.publish()
	}
}

// drain applies every pending command without waiting for more
func (r *Runner) drain() bool {
	applied := false
	for {
		select {
		case cmd := <-r.commands:
			if err := cmd.apply(r); err != nil {
				r.lastErr = err
				debug.Log("runner", "command %T: %v", cmd, err)
			} else {
				r.lastErr = nil
			}
			applied = true
		default:
			return applied
		}
	}
}

func (r *Runner) deliver(n Note, on bool) {
	if r.sink == nil {
		return
	}
	var err error
	if on {
		err = r.sink.NoteOn(n)
	} else {
		err = r.sink.NoteOff(n)
	}
	if err != nil {
		r.lastErr = errors.Wrapf(err, "note %d", n.Number)
		debug.LogEvery(32, "output", "note %d on=%v: %v", n.Number, on, err)
	}
}

// checkRate keeps the clock's phase increment below one, so every period
// still yields a rising and a falling edge.
func checkRate(rate, sampleRate float64) error {
	if rate >= sampleRate {
		return errors.Wrapf(clock.ErrInvalidSampleRate, "rate %v Hz must stay below the %v Hz wake rate", rate, sampleRate)
	}
	return nil
}

// stopAll releases whatever is still sounding
func (r *Runner) stopAll() {
	for _, n := range r.engine.OnClockLow() {
		r.deliver(n, false)
	}
}

// pushGrid copies the grid patterns into the engine
func (r *Runner) pushGrid() error {
	return r.engine.SetRowActivations(r.grid.RowActivations())
}

func (r *Runner) publish() {
	s := &Status{
		Gate:       r.clock.GateOn(),
		Edges:      r.edges,
		Rate:       r.rate,
		SampleRate: r.sampleRate,
		DutyCycle:  r.clock.DutyCycle(),
		Density:    r.grid.NormalizedDensity(),
		Hold:       r.engine.Arp().HoldNotesEnabled(),
		Ordering:   r.engine.Arp().Ordering().String(),
		Wrapping:   r.engine.Arp().Wrapping().String(),
		Sounding:   r.engine.Sounding(),
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	for _, slot := range r.engine.Arp().ActiveNotes() {
		if n, ok := slot.Note(); ok {
			s.HeldNotes = append(s.HeldNotes, n)
		}
	}

	notes := r.engine.NotesForRows()
	steps := r.engine.RowActivations()
	playing := r.engine.PlayingSteps()
	for i := range s.Rows {
		s.Rows[i] = RowStatus{
			Active:   r.engine.Arp().RowActive(i),
			Notes:    notes[i],
			Steps:    steps[i],
			Playhead: playing[i],
		}
	}

	r.status.Store(s)
	select {
	case r.UpdateChan <- struct{}{}:
	default:
	}
}
