package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-rho/debug"
	"go-rho/midi"
)

var serveFlags overrides

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the sequencer headless, controlled over HTTP and MIDI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := serveFlags.apply(cfg); err != nil {
			return err
		}
		if cfg.HTTP.Addr == "" {
			cfg.HTTP.Addr = ":8080"
		}

		s, err := newSession(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		s.start(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "rho serving on %s (ctrl+c to stop)\n", cfg.HTTP.Addr)

		err = s.loop(ctx)
		cancel()
		s.wait()
		return err
	},
}

// loop feeds device events and status updates to the bridge until ctx ends
// or the HTTP server fails.
func (s *session) loop(ctx context.Context) error {
	events := s.devices.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-s.httpErr:
			return err
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.bridge.HandleDevice(ev)
			if ev.Type == midi.DeviceConnected {
				debug.Log("serve", "connected %s", ev.ID)
			}
		case <-s.runner.UpdateChan:
			s.bridge.Sync(s.runner.Status())
		}
	}
}

func init() {
	serveFlags.register(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}
