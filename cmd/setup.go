package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"go-rho/config"
	"go-rho/midi"
	"go-rho/sequencer"
	"go-rho/theme"
)

// overrides are command line settings layered over the config file
type overrides struct {
	inPort     string
	outPort    string
	outChannel int
	rate       float64
	seed       int64
	httpAddr   string
}

func (o *overrides) register(flags *pflag.FlagSet) {
	flags.StringVar(&o.inPort, "in", "", "MIDI input for notes (name, substring or index)")
	flags.StringVar(&o.outPort, "out", "", "MIDI output for notes (name, substring or index)")
	flags.IntVar(&o.outChannel, "channel", 0, "output MIDI channel 1-16 (0 keeps the config)")
	flags.Float64Var(&o.rate, "rate", 0, "clock rate in Hz (0 keeps the config)")
	flags.Int64Var(&o.seed, "seed", 0, "random seed for the step grid (0 keeps the config)")
	flags.StringVar(&o.httpAddr, "http", "", "serve the control API on this address, e.g. :8080")
}

func (o *overrides) apply(cfg *config.Config) error {
	if o.inPort != "" {
		cfg.MIDI.InPort = o.inPort
	}
	if o.outPort != "" {
		cfg.MIDI.OutPort = o.outPort
	}
	if o.outChannel != 0 {
		if o.outChannel < 1 || o.outChannel > 16 {
			return errors.Wrapf(midi.ErrInvalidChannel, "channel %d", o.outChannel)
		}
		cfg.MIDI.OutChannel = o.outChannel - 1
	}
	if o.rate != 0 {
		cfg.Clock.Rate = o.rate
	}
	if o.seed != 0 {
		cfg.Grid.Seed = o.seed
	}
	if o.httpAddr != "" {
		cfg.HTTP.Addr = o.httpAddr
	}
	return nil
}

// runnerConfig turns the saved settings into a runner setup
func runnerConfig(cfg *config.Config) (sequencer.RunnerConfig, error) {
	rc := sequencer.DefaultRunnerConfig()
	rc.SampleRate = cfg.Clock.SampleRate
	rc.Rate = cfg.Clock.Rate
	rc.DutyCycle = cfg.Clock.DutyCycle
	rc.RowLength = cfg.Grid.RowLength
	rc.Density = cfg.Grid.Density
	rc.Seed = cfg.Grid.Seed
	rc.Hold = cfg.Arp.Hold

	var err error
	if rc.Ordering, err = sequencer.ParseOrdering(cfg.Arp.Ordering); err != nil {
		return rc, errors.Wrap(err, "config arp.ordering")
	}
	if rc.Wrapping, err = sequencer.ParseWrapping(cfg.Arp.Wrapping); err != nil {
		return rc, errors.Wrap(err, "config arp.wrapping")
	}
	if rc.RowLength < sequencer.MinRowLength || rc.RowLength > sequencer.MaxRowLength {
		return rc, errors.Wrapf(sequencer.ErrInvalidLength, "config grid.rowLength %d", rc.RowLength)
	}
	return rc, nil
}

// keyboardSpecs lists the inputs to play notes from
func keyboardSpecs(cfg *config.Config) []midi.KeyboardSpec {
	var specs []midi.KeyboardSpec
	if cfg.MIDI.InPort != "" {
		specs = append(specs, midi.KeyboardSpec{Port: cfg.MIDI.InPort, Channel: cfg.MIDI.InChannel})
	}
	for _, c := range cfg.AutoConnectControllers() {
		if c.Type == config.ControllerKeyboard {
			specs = append(specs, midi.KeyboardSpec{Port: c.PortName, Channel: cfg.MIDI.InChannel})
		}
	}
	return specs
}

// autoLaunchpad reports whether Launchpads should be picked up when plugged in
func autoLaunchpad(cfg *config.Config) bool {
	for _, c := range cfg.AutoConnectControllers() {
		if c.Type == config.ControllerLaunchpadX {
			return true
		}
	}
	return false
}

// openOutput opens the configured note output, or returns nil if none is set
func openOutput(cfg *config.Config) (*midi.Output, error) {
	if cfg.MIDI.OutPort == "" {
		return nil, nil
	}
	ports, err := midi.ListPorts(midi.DefaultPortTimeout)
	if err != nil {
		return nil, err
	}
	port, err := ports.FindOutPort(cfg.MIDI.OutPort)
	if err != nil {
		return nil, err
	}
	return midi.NewOutput(port, cfg.MIDI.OutChannel)
}

func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		return nil, err
	}
	return theme.New(palette), nil
}
