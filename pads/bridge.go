package pads

import (
	"sync"

	"go-rho/debug"
	"go-rho/midi"
	"go-rho/sequencer"
	"go-rho/theme"
)

// Runner is what a Bridge drives
type Runner interface {
	Send(cmd sequencer.Command) error
	Status() *sequencer.Status
}

// Bridge wires connected controllers to a runner. Keyboards send notes;
// grid controllers get a Surface. It follows midi.DeviceManager events.
type Bridge struct {
	runner Runner
	theme  *theme.Theme

	mu       sync.Mutex
	surfaces map[string]*Surface
	wg       sync.WaitGroup
}

func NewBridge(runner Runner, th *theme.Theme) *Bridge {
	return &Bridge{
		runner:   runner,
		theme:    th,
		surfaces: make(map[string]*Surface),
	}
}

// HandleDevice connects or forgets a controller
func (b *Bridge) HandleDevice(ev midi.DeviceEvent) {
	switch ev.Type {
	case midi.DeviceConnected:
		b.Connect(ev.Controller)
	case midi.DeviceDisconnected:
		b.mu.Lock()
		delete(b.surfaces, ev.ID)
		b.mu.Unlock()
	}
}

// Connect starts forwarding a controller's events. The goroutines end when
// the controller closes its channels.
func (b *Bridge) Connect(c midi.Controller) {
	if c.Type() == midi.ControllerLaunchpad {
		s := NewSurface(b.runner, c, b.theme)
		b.mu.Lock()
		b.surfaces[c.ID()] = s
		b.mu.Unlock()
		if st := b.runner.Status(); st != nil {
			if err := s.Sync(st); err != nil {
				debug.Log("pads", "%s: %v", c.ID(), err)
			}
		}

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for ev := range c.PadEvents() {
				if err := s.HandlePad(ev, b.runner.Status()); err != nil {
					debug.Log("pads", "%s: %v", c.ID(), err)
				}
			}
		}()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for ev := range c.NoteEvents() {
			var cmd sequencer.Command = sequencer.NoteOffCmd{Note: int(ev.Note)}
			if ev.On {
				cmd = sequencer.NoteOnCmd{Note: int(ev.Note), Velocity: int(ev.Velocity)}
			}
			if err := b.runner.Send(cmd); err != nil {
				debug.Log("keys", "%s note %d: %v", c.ID(), ev.Note, err)
			}
		}
	}()
}

// Sync refreshes every surface from st
func (b *Bridge) Sync(st *sequencer.Status) {
	if st == nil {
		return
	}
	b.mu.Lock()
	surfaces := make(map[string]*Surface, len(b.surfaces))
	for id, s := range b.surfaces {
		surfaces[id] = s
	}
	b.mu.Unlock()

	for id, s := range surfaces {
		if err := s.Sync(st); err != nil {
			debug.LogEvery(50, "pads", "%s: %v", id, err)
		}
	}
}

// Surfaces returns the connected grid controller IDs
func (b *Bridge) Surfaces() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.surfaces))
	for id := range b.surfaces {
		ids = append(ids, id)
	}
	return ids
}

// Preview returns the last frame sent to any surface, for display
func (b *Bridge) Preview() *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.surfaces {
		if f := s.Last(); f != nil {
			return f
		}
	}
	return nil
}

// Wait blocks until every forwarding goroutine has ended
func (b *Bridge) Wait() {
	b.wg.Wait()
}
