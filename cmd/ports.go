package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-rho/midi"
)

var portsTimeout time.Duration

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "list MIDI inputs and outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()

		ports, err := midi.ListPorts(portsTimeout)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "inputs:")
		printPorts(cmd, ports.InNames())
		fmt.Fprintln(out, "outputs:")
		printPorts(cmd, ports.OutNames())
		return nil
	},
}

func printPorts(cmd *cobra.Command, names []string) {
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for i, name := range names {
		mark := ""
		if midi.IsLaunchpad(name) {
			mark = "  [launchpad]"
		}
		fmt.Fprintf(out, "  %d: %s%s\n", i, name, mark)
	}
}

func init() {
	portsCmd.Flags().DurationVar(&portsTimeout, "timeout", midi.DefaultPortTimeout, "give up if the MIDI driver does not answer")
	rootCmd.AddCommand(portsCmd)
}
