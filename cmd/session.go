package cmd

import (
	"context"
	"sync"

	"go-rho/config"
	"go-rho/control"
	"go-rho/debug"
	"go-rho/midi"
	"go-rho/pads"
	"go-rho/sequencer"
	"go-rho/theme"
	"go-rho/tui"
)

// session is one running sequencer with its outputs and controllers
type session struct {
	cfg     *config.Config
	theme   *theme.Theme
	runner  *sequencer.Runner
	output  *midi.Output
	devices *midi.DeviceManager
	bridge  *pads.Bridge

	wg      sync.WaitGroup
	httpErr chan error
}

func newSession(cfg *config.Config) (*session, error) {
	th, err := loadTheme(cfg)
	if err != nil {
		return nil, err
	}
	rc, err := runnerConfig(cfg)
	if err != nil {
		return nil, err
	}
	out, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}

	var sink sequencer.NoteSink
	if out != nil {
		sink = out
	}
	runner, err := sequencer.NewRunner(rc, sink)
	if err != nil {
		if out != nil {
			out.Close()
		}
		return nil, err
	}

	return &session{
		cfg:     cfg,
		theme:   th,
		runner:  runner,
		output:  out,
		devices: midi.NewDeviceManager(keyboardSpecs(cfg), autoLaunchpad(cfg)),
		bridge:  pads.NewBridge(runner, th),
		httpErr: make(chan error, 1),
	}, nil
}

// start runs the clock, device polling and (if configured) the HTTP API
// until ctx is done.
func (s *session) start(ctx context.Context) {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.runner.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.devices.Run(ctx)
	}()

	if addr := s.cfg.HTTP.Addr; addr != "" {
		srv := control.NewServer(s.runner, nil)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				debug.Log("http", "%v", err)
				s.httpErr <- err
			}
		}()
	}
}

// channel returns the output's channel control, or nil without an output
func (s *session) channel() tui.ChannelSetter {
	if s.output == nil {
		return nil
	}
	return s.output
}

// wait blocks until everything started has stopped, then silences the output
func (s *session) wait() {
	s.wg.Wait()
	s.bridge.Wait()
	if s.output != nil {
		if err := s.output.Close(); err != nil {
			debug.Log("output", "close: %v", err)
		}
	}
	midi.CloseDriver()
}
