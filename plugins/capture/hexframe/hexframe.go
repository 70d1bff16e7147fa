// Package hexframe implements a capture plugin that replays frames given as hex
// strings, for decoding single frames from the command line.
package hexframe

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/pkg/plugin"
)

const pluginName = "hex"

// Config represents hex capturer configuration.
type Config struct {
	Frames []string `mapstructure:"frames"` // required, one hex string per frame
}

// HexCapturer emits its configured frames once, in order.
type HexCapturer struct {
	name   string
	frames [][]byte

	packetsReceived atomic.Uint64
}

// NewHexCapturer creates a new hex capturer instance.
func NewHexCapturer() plugin.Capturer {
	return &HexCapturer{name: pluginName}
}

// Name returns the plugin name.
func (c *HexCapturer) Name() string {
	return c.name
}

// Init parses every frame up front so that a typo fails before capture starts.
func (c *HexCapturer) Init(cfg map[string]any) error {
	var conf Config
	if err := plugin.DecodeConfig(cfg, &conf); err != nil {
		return fmt.Errorf("hex: %w", err)
	}
	if len(conf.Frames) == 0 {
		return fmt.Errorf("hex: %w: at least one frame is required", core.ErrConfigInvalid)
	}

	c.frames = make([][]byte, 0, len(conf.Frames))
	for i, s := range conf.Frames {
		b, err := ParseFrame(s)
		if err != nil {
			return fmt.Errorf("hex: %w: frame %d: %v", core.ErrConfigInvalid, i, err)
		}
		c.frames = append(c.frames, b)
	}
	return nil
}

// ParseFrame decodes a hex dump. An optional 0x prefix is removed, and
// whitespace, ':' and '-' separators are ignored.
func ParseFrame(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, fmt.Errorf("empty frame")
	}
	return hex.DecodeString(s)
}

// Start is a no-op.
func (c *HexCapturer) Start(ctx context.Context) error { return nil }

// Stop is a no-op.
func (c *HexCapturer) Stop(ctx context.Context) error { return nil }

// Capture sends each frame stamped with the current time, then returns nil.
func (c *HexCapturer) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	for _, frame := range c.frames {
		raw := core.RawPacket{
			Data:       frame,
			Timestamp:  time.Now(),
			CaptureLen: uint32(len(frame)),
			OrigLen:    uint32(len(frame)),
		}
		select {
		case output <- raw:
			c.packetsReceived.Add(1)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Stats returns capture statistics.
func (c *HexCapturer) Stats() plugin.CaptureStats {
	return plugin.CaptureStats{PacketsReceived: c.packetsReceived.Load()}
}
