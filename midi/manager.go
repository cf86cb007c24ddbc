package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"go-rho/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// KeyboardSpec names an input port to treat as a keyboard
type KeyboardSpec struct {
	Port    string // index, exact name or name substring
	Channel int    // 0-15 or AnyChannel
}

// DeviceManager handles hot-plug detection of MIDI controllers. Launchpads
// are picked up automatically; keyboards only when listed.
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	keyboards     []KeyboardSpec
	autoLaunchpad bool
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(keyboards []KeyboardSpec, autoLaunchpad bool) *DeviceManager {
	return &DeviceManager{
		controllers:   make(map[string]Controller),
		events:        make(chan DeviceEvent, 16),
		pollRate:      time.Second,
		keyboards:     keyboards,
		autoLaunchpad: autoLaunchpad,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Run polls for devices until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ports, err := ListPorts(DefaultPortTimeout)
	if err != nil {
		debug.LogEvery(10, "devices", "scan: %v", err)
		return
	}

	seenIDs := make(map[string]bool)
	for _, m := range matchControllers(ports.InNames(), ports.OutNames(), dm.keyboards, dm.autoLaunchpad) {
		seenIDs[m.ID] = true

		dm.mu.RLock()
		_, exists := dm.controllers[m.ID]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var c Controller
		switch m.Type {
		case ControllerLaunchpad:
			lp, err := NewLaunchpadController(m.ID, ports.Ins[m.In], ports.Outs[m.Out])
			if err != nil {
				debug.Log("devices", "launchpad %s: %v", m.ID, err)
				continue
			}
			c = lp
		case ControllerKeyboard:
			kb, err := NewKeyboardController(m.ID, ports.Ins[m.In], m.Channel)
			if err != nil {
				debug.Log("devices", "keyboard %s: %v", m.ID, err)
				continue
			}
			c = kb
		default:
			continue
		}

		dm.mu.Lock()
		dm.controllers[m.ID] = c
		dm.mu.Unlock()
		debug.Log("devices", "connected %s (%s)", m.ID, m.Type)

		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: m.ID})
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("devices", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()
}

// emit waits for a listener unless shutting down
func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// controllerMatch is a controller to open: port indexes into a listing
type controllerMatch struct {
	ID      string
	Type    ControllerType
	In      int
	Out     int // -1 when the controller is input only
	Channel int
}

type portName string

func (p portName) String() string { return string(p) }

// matchControllers decides which ports become controllers. A Launchpad needs
// both an input and an output of the same name. A port is used once.
func matchControllers(inNames, outNames []string, keyboards []KeyboardSpec, autoLaunchpad bool) []controllerMatch {
	var matches []controllerMatch
	used := make(map[int]bool)

	if autoLaunchpad {
		for i, name := range inNames {
			if !IsLaunchpad(name) {
				continue
			}
			for j, out := range outNames {
				if strings.EqualFold(out, name) {
					matches = append(matches, controllerMatch{ID: name, Type: ControllerLaunchpad, In: i, Out: j})
					used[i] = true
					break
				}
			}
		}
	}

	ins := make([]portName, len(inNames))
	for i, n := range inNames {
		ins[i] = portName(n)
	}
	for _, kb := range keyboards {
		p, err := findPort(ins, kb.Port)
		if err != nil {
			continue
		}
		i := slices.Index(inNames, string(p))
		if used[i] {
			continue
		}
		used[i] = true
		matches = append(matches, controllerMatch{ID: inNames[i], Type: ControllerKeyboard, In: i, Out: -1, Channel: kb.Channel})
	}
	return matches
}
