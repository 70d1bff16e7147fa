package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/dissector/pkg/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the built-in plugins",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printPlugins(cmd.OutOrStdout())
	},
}

func printPlugins(w io.Writer) {
	fmt.Fprintf(w, "capturers:  %s\n", strings.Join(plugin.ListCapturers(), ", "))
	fmt.Fprintf(w, "processors: %s\n", strings.Join(plugin.ListProcessors(), ", "))
	fmt.Fprintf(w, "reporters:  %s\n", strings.Join(plugin.ListReporters(), ", "))
}
