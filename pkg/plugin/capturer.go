package plugin

import (
	"context"

	"firestige.xyz/dissector/internal/core"
)

// Capturer delivers raw frames to output until ctx is cancelled or the
// source is exhausted. It must not close output.
type Capturer interface {
	Plugin
	Capture(ctx context.Context, output chan<- core.RawPacket) error
	Stats() CaptureStats
}

// CaptureStats represents capture statistics.
type CaptureStats struct {
	PacketsReceived  uint64
	PacketsDropped   uint64 // dropped by the capturer because output was full
	PacketsIfDropped uint64 // dropped by the kernel or interface
}
