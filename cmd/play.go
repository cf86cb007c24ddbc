package cmd

import (
	"context"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go-rho/tui"
)

var playFlags overrides

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "run the sequencer with the terminal grid editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := playFlags.apply(cfg); err != nil {
			return err
		}

		s, err := newSession(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		s.start(ctx)

		m := tui.NewModel(tui.Deps{
			Runner:  s.runner,
			Updates: s.runner.UpdateChan,
			Devices: s.devices,
			Bridge:  s.bridge,
			Output:  s.channel(),
			Config:  cfg,
			Theme:   s.theme,
		})
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

		cancel()
		s.wait()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	},
}

func init() {
	playFlags.register(playCmd.Flags())
	rootCmd.AddCommand(playCmd)
}
