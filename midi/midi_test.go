package midi

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-rho/sequencer"
)

type recorder struct {
	msgs []gomidi.Message
	err  error
}

func (r *recorder) send(msg gomidi.Message) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestParseNote(t *testing.T) {
	ev, ok := parseNote(gomidi.NoteOn(2, 60, 100), AnyChannel)
	require.True(t, ok)
	assert.Equal(t, NoteEvent{Note: 60, Velocity: 100, Channel: 2, On: true}, ev)

	ev, ok = parseNote(gomidi.NoteOff(2, 60), AnyChannel)
	require.True(t, ok)
	assert.Equal(t, NoteEvent{Note: 60, Channel: 2}, ev)

	// running-status style release
	ev, ok = parseNote(gomidi.NoteOn(0, 64, 0), AnyChannel)
	require.True(t, ok)
	assert.False(t, ev.On)
	assert.Equal(t, uint8(64), ev.Note)

	_, ok = parseNote(gomidi.ControlChange(0, 1, 64), AnyChannel)
	assert.False(t, ok)
}

func TestParseNoteChannelFilter(t *testing.T) {
	_, ok := parseNote(gomidi.NoteOn(3, 60, 100), 2)
	assert.False(t, ok)
	_, ok = parseNote(gomidi.NoteOn(2, 60, 100), 2)
	assert.True(t, ok)
}

func TestKeyboardDeliversEvents(t *testing.T) {
	kb, err := NewKeyboardController("keys", nil, AnyChannel)
	require.NoError(t, err)
	assert.Equal(t, ControllerKeyboard, kb.Type())

	kb.handle(gomidi.NoteOn(0, 60, 90))
	kb.handle(gomidi.NoteOff(0, 60))
	assert.Equal(t, NoteEvent{Note: 60, Velocity: 90, On: true}, <-kb.NoteEvents())
	assert.Equal(t, NoteEvent{Note: 60}, <-kb.NoteEvents())

	require.NoError(t, kb.Close())
	_, open := <-kb.NoteEvents()
	assert.False(t, open)
}

func TestOutput(t *testing.T) {
	rec := &recorder{}
	out, err := newOutput("synth", rec.send, 1)
	require.NoError(t, err)
	var _ sequencer.NoteSink = out

	require.NoError(t, out.NoteOn(sequencer.Note{Number: 60, Velocity: 100}))
	require.NoError(t, out.NoteOff(sequencer.Note{Number: 60, Velocity: 100}))
	require.NoError(t, out.SetChannel(9))
	require.NoError(t, out.NoteOn(sequencer.Note{Number: 200, Velocity: 0}))
	require.NoError(t, out.Close())

	assert.Equal(t, []gomidi.Message{
		gomidi.NoteOn(1, 60, 100),
		gomidi.NoteOff(1, 60),
		gomidi.NoteOn(9, 127, 1),
		gomidi.ControlChange(9, 123, 0),
	}, rec.msgs)
}

func TestOutputChannelRange(t *testing.T) {
	rec := &recorder{}
	_, err := newOutput("synth", rec.send, 16)
	assert.ErrorIs(t, err, ErrInvalidChannel)

	out, err := newOutput("synth", rec.send, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, out.SetChannel(-1), ErrInvalidChannel)
	assert.Equal(t, 0, out.Channel())
}

func TestOutputReturnsSendErrors(t *testing.T) {
	rec := &recorder{err: errors.New("gone")}
	out, err := newOutput("synth", rec.send, 0)
	require.NoError(t, err)
	assert.Error(t, out.NoteOn(sequencer.Note{Number: 60, Velocity: 1}))
}

func TestFindPort(t *testing.T) {
	ports := []portName{"IAC Driver Bus 1", "Launchpad X LPX MIDI", "Launchpad X LPX DAW"}

	p, err := findPort(ports, "1")
	require.NoError(t, err)
	assert.Equal(t, portName("Launchpad X LPX MIDI"), p)

	p, err = findPort(ports, "Launchpad X LPX DAW")
	require.NoError(t, err)
	assert.Equal(t, portName("Launchpad X LPX DAW"), p)

	p, err = findPort(ports, "iac")
	require.NoError(t, err)
	assert.Equal(t, portName("IAC Driver Bus 1"), p)

	_, err = findPort(ports, "5")
	assert.ErrorIs(t, err, ErrPortNotFound)
	_, err = findPort(ports, "keystep")
	assert.ErrorIs(t, err, ErrPortNotFound)
	_, err = findPort(ports, " ")
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestMatchControllers(t *testing.T) {
	ins := []string{"Keystep 37", "Launchpad X LPX MIDI", "IAC Driver Bus 1"}
	outs := []string{"IAC Driver Bus 1", "Launchpad X LPX MIDI"}
	keyboards := []KeyboardSpec{
		{Port: "keystep", Channel: 0},
		{Port: "launchpad", Channel: AnyChannel}, // already taken
		{Port: "missing"},
	}

	got := matchControllers(ins, outs, keyboards, true)
	assert.Equal(t, []controllerMatch{
		{ID: "Launchpad X LPX MIDI", Type: ControllerLaunchpad, In: 1, Out: 1},
		{ID: "Keystep 37", Type: ControllerKeyboard, In: 0, Out: -1, Channel: 0},
	}, got)

	got = matchControllers(ins, outs, keyboards, false)
	require.Len(t, got, 2)
	assert.Equal(t, ControllerKeyboard, got[1].Type)
	assert.Equal(t, "Launchpad X LPX MIDI", got[1].ID)
}

func TestLaunchpadMapping(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 9; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			assert.Equal(t, row, r)
			assert.Equal(t, col, c)
		}
	}
	assert.Equal(t, uint8(11), rowColToNote(0, 0))
	assert.Equal(t, uint8(19), rowColToNote(0, 8))
	assert.Equal(t, uint8(93), rowColToNote(8, 2))

	r, _ := noteToRowCol(5)
	assert.Equal(t, -1, r)
	r, c := ccToRowCol(98)
	assert.Equal(t, 8, r)
	assert.Equal(t, 7, c)
}

func TestParsePad(t *testing.T) {
	ev, ok := parsePad(gomidi.NoteOn(0, 23, 100))
	require.True(t, ok)
	assert.Equal(t, PadEvent{Row: 1, Col: 2, Velocity: 100}, ev)

	ev, ok = parsePad(gomidi.ControlChange(0, 95, 127))
	require.True(t, ok)
	assert.Equal(t, PadEvent{Row: 8, Col: 4, Velocity: 127}, ev)

	_, ok = parsePad(gomidi.NoteOn(0, 23, 0))
	assert.False(t, ok)
	_, ok = parsePad(gomidi.ControlChange(0, 95, 0))
	assert.False(t, ok)
}

func TestMapRGBToLaunchpad(t *testing.T) {
	assert.Equal(t, uint8(0), mapRGBToLaunchpad([3]uint8{0, 0, 0}))
	assert.Equal(t, uint8(5), mapRGBToLaunchpad([3]uint8{250, 5, 5}))
	assert.Equal(t, uint8(119), mapRGBToLaunchpad([3]uint8{255, 255, 255}))
	assert.Equal(t, uint8(21), mapRGBToLaunchpad([3]uint8{10, 250, 10}))
}

func TestLaunchpadLEDs(t *testing.T) {
	rec := &recorder{}
	lp := newLaunchpad("lp", rec.send)
	require.Len(t, rec.msgs, 3)
	assert.Equal(t, gomidi.SysEx(sysexProgrammerMode), rec.msgs[0])
	rec.msgs = nil

	require.NoError(t, lp.SetLEDBatch([]LEDUpdate{
		{Row: 0, Col: 0, Color: [3]uint8{255, 0, 0}},
		{Row: 8, Col: 1, Color: [3]uint8{255, 255, 255}, Channel: ChannelPulse},
	}))
	assert.Equal(t, []gomidi.Message{
		gomidi.NoteOn(0, 11, 5),
		gomidi.NoteOn(ChannelPulse, 92, 119),
	}, rec.msgs)

	rec.msgs = nil
	require.NoError(t, lp.Close())
	assert.Len(t, rec.msgs, 81)
	assert.Equal(t, gomidi.SysEx(sysexLiveMode), rec.msgs[80])
}
