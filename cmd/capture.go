package cmd

import (
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Decode frames captured live from a network interface",
	Long: `Capture frames from an interface through an AF_PACKET TPACKET_V3 ring
and decode them until interrupted. Requires Linux and CAP_NET_RAW.

Examples:
  dissector capture -i eth0
  dissector capture -i eth0 --filter "port 53" --fanout-id 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if captureIface != "" {
			cfg.Capture.Interface = captureIface
		}
		if captureFilter != "" {
			cfg.Capture.BPFFilter = captureFilter
		}
		if cmd.Flags().Changed("fanout-id") {
			cfg.Capture.FanoutID = captureFanoutID
		}
		return runSession(cmd.Context(), cfg, "afpacket", map[string]any{
			"interface":      cfg.Capture.Interface,
			"bpf_filter":     cfg.Capture.BPFFilter,
			"snap_len":       cfg.Capture.SnapLen,
			"buffer_size_mb": cfg.Capture.BufferSizeMB,
			"fanout_id":      cfg.Capture.FanoutID,
		}, true)
	},
}

var (
	captureIface    string
	captureFilter   string
	captureFanoutID int
)

func init() {
	captureCmd.Flags().StringVarP(&captureIface, "interface", "i", "", "network interface (overrides capture.interface)")
	captureCmd.Flags().StringVar(&captureFilter, "filter", "", "BPF filter expression")
	captureCmd.Flags().IntVar(&captureFanoutID, "fanout-id", 0, "PACKET_FANOUT group id, 0 disables fanout")
}
