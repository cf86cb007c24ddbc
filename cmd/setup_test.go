package cmd

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rho/config"
	"go-rho/midi"
	"go-rho/sequencer"
)

func TestOverridesApply(t *testing.T) {
	var o overrides
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.register(flags)
	require.NoError(t, flags.Parse([]string{"--out", "IAC", "--channel", "10", "--rate", "4", "--seed", "7", "--http", ":9000"}))

	cfg := config.DefaultConfig()
	require.NoError(t, o.apply(cfg))
	assert.Equal(t, "IAC", cfg.MIDI.OutPort)
	assert.Equal(t, "", cfg.MIDI.InPort)
	assert.Equal(t, 9, cfg.MIDI.OutChannel)
	assert.Equal(t, 4.0, cfg.Clock.Rate)
	assert.Equal(t, int64(7), cfg.Grid.Seed)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestOverridesKeepConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MIDI.OutChannel = 3
	require.NoError(t, (&overrides{}).apply(cfg))
	assert.Equal(t, config.DefaultConfig().Clock, cfg.Clock)
	assert.Equal(t, 3, cfg.MIDI.OutChannel)
}

func TestOverridesBadChannel(t *testing.T) {
	err := (&overrides{outChannel: 17}).apply(config.DefaultConfig())
	assert.True(t, errors.Is(err, midi.ErrInvalidChannel))
}

func TestRunnerConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Arp.Ordering = "oldest"
	cfg.Arp.Wrapping = "stack-high"
	cfg.Arp.Hold = true
	cfg.Grid.RowLength = 6

	rc, err := runnerConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, sequencer.OldestFirst, rc.Ordering)
	assert.Equal(t, sequencer.StackHigh, rc.Wrapping)
	assert.True(t, rc.Hold)
	assert.Equal(t, 6, rc.RowLength)
	assert.Equal(t, 32.0, rc.SampleRate)
	assert.Equal(t, sequencer.DefaultRunnerConfig().QueueSize, rc.QueueSize)
}

func TestRunnerConfigErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Arp.Ordering = "random"
	_, err := runnerConfig(cfg)
	assert.True(t, errors.Is(err, sequencer.ErrInvalidMode))

	cfg = config.DefaultConfig()
	cfg.Grid.RowLength = 9
	_, err = runnerConfig(cfg)
	assert.True(t, errors.Is(err, sequencer.ErrInvalidLength))
}

func TestKeyboardSpecs(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Empty(t, keyboardSpecs(cfg))
	assert.True(t, autoLaunchpad(cfg))

	cfg.MIDI.InPort = "Keystep"
	cfg.MIDI.InChannel = 2
	cfg.AddController(config.ControllerConfig{PortName: "Digitone", Type: config.ControllerKeyboard, AutoConnect: true})
	cfg.AddController(config.ControllerConfig{PortName: "Launchpad X LPX MIDI", Type: config.ControllerLaunchpadX})

	assert.Equal(t, []midi.KeyboardSpec{
		{Port: "Keystep", Channel: 2},
		{Port: "Digitone", Channel: 2},
	}, keyboardSpecs(cfg))
	assert.False(t, autoLaunchpad(cfg))
}

func TestOpenOutputDisabled(t *testing.T) {
	out, err := openOutput(config.DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestPrintPorts(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	printPorts(c, []string{"IAC Driver Bus 1", "Launchpad X LPX MIDI"})
	printPorts(c, nil)
	assert.Equal(t, "  0: IAC Driver Bus 1\n  1: Launchpad X LPX MIDI  [launchpad]\n  (none)\n", buf.String())
}
