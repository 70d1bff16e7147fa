package plugins

import (
	"firestige.xyz/dissector/pkg/plugin"
	"firestige.xyz/dissector/plugins/capture/afpacket"
)

func init() {
	plugin.RegisterCapturer("afpacket", afpacket.NewAFPacketCapturer)
}
