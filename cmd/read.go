package cmd

import (
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Decode frames from a pcap or pcapng file",
	Long: `Decode every Ethernet frame of a capture file and report the records.

The file format is detected from its magic number. A BPF filter given with
--filter (or capture.bpf_filter) is evaluated in user space before decoding.

Examples:
  dissector read -f dns.pcap
  dissector read -f trace.pcapng --filter "udp port 53"
  dissector read -c config.yml -f trace.pcap`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if readFilter != "" {
			cfg.Capture.BPFFilter = readFilter
		}
		if readFile != "" {
			cfg.Capture.File = readFile
		}
		return runSession(cmd.Context(), cfg, "file", map[string]any{
			"path":       cfg.Capture.File,
			"bpf_filter": cfg.Capture.BPFFilter,
			"snap_len":   cfg.Capture.SnapLen,
		}, false)
	},
}

var (
	readFile   string
	readFilter string
)

func init() {
	readCmd.Flags().StringVarP(&readFile, "file", "f", "", "capture file to read (overrides capture.file)")
	readCmd.Flags().StringVar(&readFilter, "filter", "", "BPF filter expression")
}
