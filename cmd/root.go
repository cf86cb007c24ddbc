package cmd

import (
	"github.com/spf13/cobra"

	"go-rho/config"
	"go-rho/debug"
)

var (
	configPath string
	debugLog   bool
	debugPath  string
)

var rootCmd = &cobra.Command{
	Use:   "rho",
	Short: "clock-driven grid arpeggiator",
	Long: `rho spreads held MIDI notes across four step rows and plays them
from a gate clock. Drive it from the terminal, a Launchpad X or HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugLog || debugPath != "" {
			return debug.Enable(debugPath)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/rho/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/rho/debug.log")
	rootCmd.PersistentFlags().StringVar(&debugPath, "debug-log", "", "write the debug log to this file")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}
