package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "beacon",
	Short:   "Client telemetry toolkit for timing-distribution metrics",
	Version: version,
	Long: `Beacon records elapsed-time measurements into histogram-backed telemetry
metrics. The CLI works with metric registry files: validate them before
shipping, or simulate a recording session to inspect the distributions an
application would report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is provided, print help
		return cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(simulateCmd)
}
