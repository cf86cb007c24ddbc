package midi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DefaultPortTimeout bounds a port listing. CoreMIDI can hang.
const DefaultPortTimeout = 3 * time.Second

var (
	ErrPortTimeout  = errors.New("timed out listing MIDI ports (try: sudo killall coreaudiod midiserver)")
	ErrPortNotFound = errors.New("MIDI port not found")
)

// Ports is one listing of the system's MIDI ports
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// InNames returns the input port names in order
func (p Ports) InNames() []string {
	return names(p.Ins)
}

// OutNames returns the output port names in order
func (p Ports) OutNames() []string {
	return names(p.Outs)
}

// ListPorts lists MIDI ports, giving up after timeout
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrPortTimeout
	}
}

// FindInPort looks up an input by index, exact name or name substring
func (p Ports) FindInPort(query string) (drivers.In, error) {
	return findPort(p.Ins, query)
}

// FindOutPort looks up an output by index, exact name or name substring
func (p Ports) FindOutPort(query string) (drivers.Out, error) {
	return findPort(p.Outs, query)
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}

func findPort[P fmt.Stringer](ports []P, query string) (P, error) {
	var zero P
	query = strings.TrimSpace(query)
	if query == "" {
		return zero, errors.Wrap(ErrPortNotFound, "empty port name")
	}
	if i, err := strconv.Atoi(query); err == nil {
		if i < 0 || i >= len(ports) {
			return zero, errors.Wrapf(ErrPortNotFound, "index %d of %d", i, len(ports))
		}
		return ports[i], nil
	}
	for _, p := range ports {
		if p.String() == query {
			return p, nil
		}
	}
	lower := strings.ToLower(query)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), lower) {
			return p, nil
		}
	}
	return zero, errors.Wrapf(ErrPortNotFound, "%q", query)
}

func names[P fmt.Stringer](ports []P) []string {
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = p.String()
	}
	return out
}

// IsLaunchpad reports whether a port name is a Launchpad's MIDI port
func IsLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
