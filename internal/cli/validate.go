package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/beacon/config"
	"github.com/wesleyorama2/beacon/internal/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate <registry.yaml>",
	Short: "Validate a metrics registry file",
	Long: `Check a metrics registry file against the registry schema and report
every metric it defines.

Example:
  beacon validate metrics.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		return runValidate(cmd, args[0], noColor)
	},
}

func init() {
	validateCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func runValidate(cmd *cobra.Command, path string, noColor bool) error {
	reg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", output.ErrorIcon(noColor), path, err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: %d metric(s)\n", output.SuccessIcon(noColor), path, len(reg.Definitions))
	for _, def := range reg.Definitions {
		state := "enabled"
		if def.Disabled {
			state = "disabled"
		}
		fmt.Fprintf(out, "  %s.%s (%s, %s, pings: %v, %s)\n",
			def.Category, def.Name, def.TimeUnit, def.Lifetime, def.SendInPings, state)
	}
	return nil
}
