package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX ControllerType = "launchpad-x"
	ControllerKeyboard   ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// MIDIConfig selects the note input and output
type MIDIConfig struct {
	InPort     string `json:"inPort,omitempty"`  // name or index; empty = no input
	OutPort    string `json:"outPort,omitempty"` // name or index; empty = no output
	InChannel  int    `json:"inChannel"`         // 0-15, -1 = any
	OutChannel int    `json:"outChannel"`        // 0-15
}

// ClockConfig sets the gate clock
type ClockConfig struct {
	SampleRate float64 `json:"sampleRate"` // loop wakes per second
	Rate       float64 `json:"rate"`       // gate frequency in Hz
	DutyCycle  float64 `json:"dutyCycle"`
}

// ArpConfig sets the note assignment policies
type ArpConfig struct {
	Ordering string `json:"ordering"`
	Wrapping string `json:"wrapping"`
	Hold     bool   `json:"hold"`
}

// GridConfig sets the initial step grid
type GridConfig struct {
	RowLength int     `json:"rowLength"`
	Density   float64 `json:"density"`
	Seed      int64   `json:"seed,omitempty"`
}

// HTTPConfig enables the control API
type HTTPConfig struct {
	Addr string `json:"addr,omitempty"` // empty = disabled
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, empty = built in
}

// Config is the main configuration structure
type Config struct {
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	MIDI        MIDIConfig         `json:"midi"`
	Clock       ClockConfig        `json:"clock"`
	Arp         ArpConfig          `json:"arp"`
	Grid        GridConfig         `json:"grid"`
	HTTP        HTTPConfig         `json:"http,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`

	path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		MIDI: MIDIConfig{
			InChannel: -1,
		},
		Clock: ClockConfig{
			SampleRate: 32,
			Rate:       8,
			DutyCycle:  0.5,
		},
		Arp: ArpConfig{
			Ordering: "lowest",
			Wrapping: "fold",
		},
		Grid: GridConfig{
			RowLength: 4,
			Density:   0.5,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rho"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, or returns defaults if it doesn't exist.
// Fields missing from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Path returns where Save writes
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to where it was loaded from (the default
// path for a config built in code).
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}
