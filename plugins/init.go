// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/dissector/pkg/plugin"
	"firestige.xyz/dissector/plugins/capture/file"
	"firestige.xyz/dissector/plugins/capture/hexframe"
	"firestige.xyz/dissector/plugins/processor/dedup"
	"firestige.xyz/dissector/plugins/processor/macfilter"
	"firestige.xyz/dissector/plugins/reporter/console"
	"firestige.xyz/dissector/plugins/reporter/kafka"
)

func init() {
	// Register capture plugins
	plugin.RegisterCapturer("file", file.NewFileCapturer)
	plugin.RegisterCapturer("hex", hexframe.NewHexCapturer)

	// Register processor plugins
	plugin.RegisterProcessor("macfilter", macfilter.NewMACFilter)
	plugin.RegisterProcessor("dedup", dedup.NewDedup)

	// Register reporter plugins
	plugin.RegisterReporter("console", console.NewConsoleReporter)
	plugin.RegisterReporter("kafka", kafka.NewKafkaReporter)
}
