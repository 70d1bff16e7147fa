package cmd

import (
	"github.com/spf13/cobra"
)

var frameCmd = &cobra.Command{
	Use:   "frame <hex>...",
	Short: "Decode frames given as hexadecimal strings",
	Long: `Decode one or more Ethernet frames written in hexadecimal. Whitespace,
colons and a leading 0x are ignored.

Examples:
  dissector frame ffffffffffff0011223344550806...
  dissector frame "00:11:22:33:44:55 ..." 0x0011...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context(), cfg, "hex", map[string]any{
			"frames": args,
		}, false)
	},
}
