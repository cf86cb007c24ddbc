package midi

import (
	"sync/atomic"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-rho/debug"
)

var ledSendCount atomic.Uint64

// Launchpad X SysEx bodies (without F0/F7)
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexLiveMode       = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x00}
	sysexBrightnessMax  = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexLEDFeedback    = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
)

// LaunchpadController handles a Novation Launchpad X in programmer mode
type LaunchpadController struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

// NewLaunchpadController opens the ports and switches to programmer mode.
// Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	var send func(msg gomidi.Message) error
	if outPort != nil {
		var err error
		send, err = gomidi.SendTo(outPort)
		if err != nil {
			return nil, errors.Wrapf(err, "open output %s", outPort.String())
		}
	}
	lp := newLaunchpad(id, send)

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "listen to %s", inPort.String())
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func newLaunchpad(id string, send func(msg gomidi.Message) error) *LaunchpadController {
	lp := &LaunchpadController{
		id:       id,
		send:     send,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent),
	}
	if send != nil {
		send(gomidi.SysEx(sysexProgrammerMode))
		send(gomidi.SysEx(sysexBrightnessMax))
		send(gomidi.SysEx(sysexLEDFeedback))
	}
	return lp
}

func (lp *LaunchpadController) handle(msg gomidi.Message) {
	ev, ok := parsePad(msg)
	if !ok {
		return
	}
	select {
	case lp.padChan <- ev:
	default:
	}
}

// parsePad maps a pad press (note) or top-row press (CC) to a grid position.
// Releases are ignored.
func parsePad(msg gomidi.Message) (PadEvent, bool) {
	var channel, note, velocity uint8
	var cc, value uint8

	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		if row, col := noteToRowCol(note); row >= 0 {
			return PadEvent{Row: row, Col: col, Velocity: velocity}, true
		}
	}
	if msg.GetControlChange(&channel, &cc, &value) && value > 0 {
		if row, col := ccToRowCol(cc); row >= 0 {
			return PadEvent{Row: row, Col: col, Velocity: value}, true
		}
	}
	return PadEvent{}, false
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan
}

// SetLEDBatch sends one NoteOn per update; callers only pass what changed
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return errors.Wrapf(err, "led %d,%d", u.Row, u.Col)
		}
	}

	count := ledSendCount.Add(uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}
	return nil
}

// launchpadPalette holds approximate RGB values for Launchpad X velocities
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	bestMatch := uint8(0)
	bestDist := -1

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range launchpadPalette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}
	return bestMatch
}

// Close blanks every LED and hands the device back to live mode
func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		var updates []LEDUpdate
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				if row == 8 && col == 8 {
					continue // no LED at 8,8
				}
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		lp.SetLEDBatch(updates)
		lp.send(gomidi.SysEx(sysexLiveMode))
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.padChan)
	close(lp.noteChan)
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, ... 89
// Top row:   Row 8 (top control row) = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
