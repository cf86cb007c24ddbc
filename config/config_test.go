package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 32.0, cfg.Clock.SampleRate)
	assert.Equal(t, 8.0, cfg.Clock.Rate)
	assert.Equal(t, "fold", cfg.Arp.Wrapping)
	assert.Equal(t, -1, cfg.MIDI.InChannel)
	assert.Equal(t, path, cfg.Path())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	cfg.Arp.Hold = true
	cfg.Grid.RowLength = 6
	cfg.MIDI.OutPort = "IAC Driver Bus 1"
	require.NoError(t, cfg.Save())

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, again.Arp.Hold)
	assert.Equal(t, 6, again.Grid.RowLength)
	assert.Equal(t, "IAC Driver Bus 1", again.MIDI.OutPort)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clock":{"rate":4}}`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Clock.Rate)
	assert.Equal(t, "lowest", cfg.Arp.Ordering)
	assert.Equal(t, 4, cfg.Grid.RowLength)
}

func TestBadJSONIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{nope`), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestControllers(t *testing.T) {
	cfg := DefaultConfig()
	require.Len(t, cfg.AutoConnectControllers(), 1)

	cfg.AddController(ControllerConfig{PortName: "Keystep", Type: ControllerKeyboard})
	cfg.AddController(ControllerConfig{PortName: "Launchpad X LPX MIDI", Type: ControllerLaunchpadX, AutoConnect: false})

	assert.Len(t, cfg.Controllers, 2)
	assert.Empty(t, cfg.AutoConnectControllers())
	assert.Equal(t, ControllerKeyboard, cfg.FindController("Keystep").Type)
	assert.Nil(t, cfg.FindController("missing"))
}
