package midi

import (
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-rho/debug"
)

// AnyChannel accepts notes from every input channel
const AnyChannel = -1

// KeyboardController turns a MIDI input into note starts and ends
type KeyboardController struct {
	id       string
	channel  int
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

// NewKeyboardController listens on inPort. channel is 0-15, or AnyChannel.
func NewKeyboardController(id string, inPort drivers.In, channel int) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		channel:  channel,
		padChan:  make(chan PadEvent),
		noteChan: make(chan NoteEvent, 64),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		}, gomidi.HandleError(func(err error) {
			debug.Log("keyboard", "%s: %v", id, err)
		}))
		if err != nil {
			return nil, errors.Wrapf(err, "listen to %s", inPort.String())
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) handle(msg gomidi.Message) {
	ev, ok := parseNote(msg, kb.channel)
	if !ok {
		return
	}
	select {
	case kb.noteChan <- ev:
	default:
		debug.Log("keyboard", "dropped note %d on=%v", ev.Note, ev.On)
	}
}

// parseNote extracts a note start or end. A note-on with velocity 0 is an end.
func parseNote(msg gomidi.Message, channel int) (NoteEvent, bool) {
	var ch, key, vel uint8
	var ev NoteEvent
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		ev = NoteEvent{Note: key, Velocity: vel, Channel: ch, On: true}
	case msg.GetNoteEnd(&ch, &key):
		ev = NoteEvent{Note: key, Channel: ch}
	default:
		return NoteEvent{}, false
	}
	if channel != AnyChannel && int(ch) != channel {
		return NoteEvent{}, false
	}
	return ev, true
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) PadEvents() <-chan PadEvent {
	return kb.padChan // Keyboards don't have pads
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// SetLEDBatch is a no-op for keyboards
func (kb *KeyboardController) SetLEDBatch(updates []LEDUpdate) error {
	return nil
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.padChan)
	close(kb.noteChan)
	return nil
}
