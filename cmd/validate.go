package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/dissector/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and plugin settings",
	Long: `Load the configuration given by --config, then initialize every configured
processor and reporter without starting them. Nothing is opened or connected.

Examples:
  dissector validate -c config.yml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cfg, cmd.OutOrStdout())
	},
}

func runValidate(c *config.Config, w io.Writer) error {
	processors, err := buildProcessors(c.Processors)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	reporters, err := buildReporters(c.Reporters)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}

	fmt.Fprintf(w, "VALID: %d processor(s), %d reporter(s), %d worker(s)\n",
		len(processors), len(reporters), c.Pipeline.Workers)
	return nil
}
