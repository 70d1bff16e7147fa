package plugin

import "firestige.xyz/dissector/internal/core"

// Processor inspects or annotates output packets. Returning false drops the
// packet before it reaches any reporter. Process may be called from several
// goroutines at once.
type Processor interface {
	Plugin
	Process(pkt *core.OutputPacket) (keep bool)
}
