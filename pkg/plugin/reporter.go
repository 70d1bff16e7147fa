package plugin

import (
	"context"

	"firestige.xyz/dissector/internal/core"
)

// Reporter sends output packets to external systems. Report may be called
// from several goroutines at once.
type Reporter interface {
	Plugin
	Report(ctx context.Context, pkt *core.OutputPacket) error
	Flush(ctx context.Context) error
}
