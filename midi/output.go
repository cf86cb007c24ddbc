package midi

import (
	"sync/atomic"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-rho/sequencer"
)

// ErrInvalidChannel is returned for a MIDI channel outside 0-15
var ErrInvalidChannel = errors.New("midi channel out of range")

// Output sends the engine's notes to a MIDI port. It implements
// sequencer.NoteSink. The channel can be changed from any goroutine.
type Output struct {
	name    string
	send    func(msg gomidi.Message) error
	channel atomic.Uint32
}

// NewOutput opens outPort for sending on channel 0-15
func NewOutput(outPort drivers.Out, channel int) (*Output, error) {
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, errors.Wrapf(err, "open output %s", outPort.String())
	}
	return newOutput(outPort.String(), send, channel)
}

func newOutput(name string, send func(msg gomidi.Message) error, channel int) (*Output, error) {
	o := &Output{name: name, send: send}
	if err := o.SetChannel(channel); err != nil {
		return nil, err
	}
	return o, nil
}

// Name is the port name
func (o *Output) Name() string {
	return o.name
}

// Channel returns the channel notes go out on
func (o *Output) Channel() int {
	return int(o.channel.Load())
}

// SetChannel changes the output channel
func (o *Output) SetChannel(channel int) error {
	if channel < 0 || channel > 15 {
		return errors.Wrapf(ErrInvalidChannel, "channel %d", channel)
	}
	o.channel.Store(uint32(channel))
	return nil
}

func (o *Output) NoteOn(n sequencer.Note) error {
	return o.send(gomidi.NoteOn(uint8(o.channel.Load()), clamp7(n.Number), velocity(n.Velocity)))
}

func (o *Output) NoteOff(n sequencer.Note) error {
	return o.send(gomidi.NoteOff(uint8(o.channel.Load()), clamp7(n.Number)))
}

// Close sends All Notes Off on the current channel
func (o *Output) Close() error {
	return o.send(gomidi.ControlChange(uint8(o.channel.Load()), 123, 0))
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// velocity keeps a started note audible: 0 would read as a note-off
func velocity(v int) uint8 {
	if v < 1 {
		return 1
	}
	return clamp7(v)
}
