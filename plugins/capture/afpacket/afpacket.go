//go:build linux

// Package afpacket implements an AF_PACKET (TPACKET_V3) live capture plugin.
package afpacket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/gopacket/afpacket"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/utils"
	"firestige.xyz/dissector/pkg/plugin"
)

const (
	pluginName = "afpacket"

	defaultSnapLen      = 65535
	defaultBufferSizeMB = 8
	defaultFanoutType   = "hash"
	pollTimeout         = 100 * time.Millisecond
)

// Config represents afpacket-specific configuration.
type Config struct {
	Interface    string `mapstructure:"interface"`      // required
	BPFFilter    string `mapstructure:"bpf_filter"`     // optional
	SnapLen      int    `mapstructure:"snap_len"`       // optional, default 65535
	BufferSizeMB int    `mapstructure:"buffer_size_mb"` // optional, default 8
	FanoutID     int    `mapstructure:"fanout_id"`      // optional, 0 disables fanout
	FanoutType   string `mapstructure:"fanout_type"`    // optional, only hash
}

// AFPacketCapturer implements the Capturer interface using AF_PACKET_V3.
type AFPacketCapturer struct {
	name   string
	config Config
	ring   ringSize

	// Runtime state
	handle *afpacket.TPacket
	mu     sync.Mutex
	cancel context.CancelFunc

	// Statistics (atomic counters)
	packetsReceived  atomic.Uint64
	packetsDropped   atomic.Uint64
	packetsIfDropped atomic.Uint64
}

// NewAFPacketCapturer creates a new AF_PACKET capturer instance.
func NewAFPacketCapturer() plugin.Capturer {
	return &AFPacketCapturer{
		name: pluginName,
	}
}

// Name returns the plugin name.
func (c *AFPacketCapturer) Name() string {
	return c.name
}

// Init initializes the capturer with configuration.
func (c *AFPacketCapturer) Init(cfg map[string]any) error {
	c.config = Config{
		SnapLen:      defaultSnapLen,
		BufferSizeMB: defaultBufferSizeMB,
		FanoutType:   defaultFanoutType,
	}
	if err := plugin.DecodeConfig(cfg, &c.config); err != nil {
		return fmt.Errorf("afpacket: %w", err)
	}
	if c.config.Interface == "" {
		return fmt.Errorf("afpacket: %w: interface is required", core.ErrConfigInvalid)
	}
	if c.config.FanoutID < 0 || c.config.FanoutID > 0xFFFF {
		return fmt.Errorf("afpacket: %w: fanout_id out of range: %d", core.ErrConfigInvalid, c.config.FanoutID)
	}
	if _, err := parseFanoutType(c.config.FanoutType); err != nil {
		return fmt.Errorf("afpacket: %w: %v", core.ErrConfigInvalid, err)
	}

	ring, err := recomputeSize(c.config.BufferSizeMB, c.config.SnapLen, os.Getpagesize())
	if err != nil {
		return fmt.Errorf("afpacket: %w: %v", core.ErrConfigInvalid, err)
	}
	c.ring = ring

	slog.Debug("afpacket initialized",
		"interface", c.config.Interface,
		"bpf_filter", c.config.BPFFilter,
		"snap_len", c.config.SnapLen,
		"frame_size", ring.FrameSize,
		"block_size", ring.BlockSize,
		"num_blocks", ring.NumBlocks,
		"fanout_id", c.config.FanoutID)

	return nil
}

// Start is a no-op; the handle is opened by Capture.
func (c *AFPacketCapturer) Start(ctx context.Context) error {
	return nil
}

// Stop cancels a running Capture.
//
// The TPacket handle is owned by Capture and closed there on return. Closing
// it here would race with ZeroCopyReadPacketData and unmap the ring under it.
func (c *AFPacketCapturer) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// Capture reads frames until ctx is cancelled. Frames are copied out of the
// ring before they are sent, since decode workers hold on to them. When
// output is full the frame is dropped and counted rather than stalling the
// ring.
func (c *AFPacketCapturer) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	handle, err := afpacket.NewTPacket(
		afpacket.OptInterface(c.config.Interface),
		afpacket.OptFrameSize(c.ring.FrameSize),
		afpacket.OptBlockSize(c.ring.BlockSize),
		afpacket.OptNumBlocks(c.ring.NumBlocks),
		afpacket.OptPollTimeout(pollTimeout),
		afpacket.OptTPacketVersion(afpacket.TPacketVersion3),
	)
	if err != nil {
		return fmt.Errorf("failed to create TPacket handle on %s: %w", c.config.Interface, err)
	}
	c.handle = handle
	defer func() {
		c.handle.Close()
		c.handle = nil
	}()

	if c.config.FanoutID != 0 {
		fanoutType, _ := parseFanoutType(c.config.FanoutType)
		if err := c.handle.SetFanout(fanoutType, uint16(c.config.FanoutID)); err != nil {
			return fmt.Errorf("failed to set fanout: %w", err)
		}
		slog.Info("afpacket fanout configured",
			"interface", c.config.Interface,
			"fanout_id", c.config.FanoutID,
			"fanout_type", c.config.FanoutType)
	}

	if c.config.BPFFilter != "" {
		insns, err := utils.CompileBPF(c.config.BPFFilter, c.config.SnapLen)
		if err != nil {
			return err
		}
		if err := c.handle.SetBPF(insns); err != nil {
			return fmt.Errorf("failed to set BPF: %w", err)
		}
		slog.Debug("BPF filter applied", "filter", c.config.BPFFilter)
	}

	if err := c.handle.InitSocketStats(); err != nil {
		slog.Warn("failed to init socket stats", "error", err)
	}

	slog.Info("afpacket capture started", "interface", c.config.Interface)

	// Read directly instead of through gopacket.PacketSource, whose goroutine
	// would keep touching the ring after Close.
	for {
		select {
		case <-ctx.Done():
			c.updateSocketStats()
			slog.Info("afpacket capture stopped", "interface", c.config.Interface)
			return nil
		default:
		}

		data, ci, err := c.handle.ZeroCopyReadPacketData()
		if err != nil {
			if retryableReadError(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			c.updateSocketStats()
			return fmt.Errorf("afpacket read on %s: %w", c.config.Interface, err)
		}
		c.packetsReceived.Add(1)

		frame := make([]byte, len(data))
		copy(frame, data)
		raw := core.RawPacket{
			Data:           frame,
			Timestamp:      ci.Timestamp,
			CaptureLen:     uint32(ci.CaptureLength),
			OrigLen:        uint32(ci.Length),
			InterfaceIndex: ci.InterfaceIndex,
		}

		select {
		case output <- raw:
		case <-ctx.Done():
		default:
			c.packetsDropped.Add(1)
			slog.Debug("output channel full, dropping frame", "interface", c.config.Interface)
		}

		if c.packetsReceived.Load()%1024 == 0 {
			c.updateSocketStats()
		}
	}
}

// updateSocketStats refreshes the kernel drop counter.
func (c *AFPacketCapturer) updateSocketStats() {
	if _, v3, err := c.handle.SocketStats(); err == nil {
		c.packetsIfDropped.Store(uint64(v3.Drops()))
	}
}

// Stats returns capture statistics.
func (c *AFPacketCapturer) Stats() plugin.CaptureStats {
	return plugin.CaptureStats{
		PacketsReceived:  c.packetsReceived.Load(),
		PacketsDropped:   c.packetsDropped.Load(),
		PacketsIfDropped: c.packetsIfDropped.Load(),
	}
}

// parseFanoutType converts a fanout type name to the afpacket constant.
// gopacket/afpacket v1.1.19 exports only FanoutHash.
func parseFanoutType(ft string) (afpacket.FanoutType, error) {
	switch ft {
	case "hash", "":
		return afpacket.FanoutHash, nil
	default:
		return 0, fmt.Errorf("unknown fanout type %q, only hash is supported", ft)
	}
}

// retryableReadError reports whether a ring read failed only because no frame
// arrived within the poll timeout or the poll was interrupted.
func retryableReadError(err error) bool {
	return errors.Is(err, afpacket.ErrTimeout) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.EAGAIN)
}
