// Package file implements an offline capture plugin reading pcap and pcapng files.
package file

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/utils"
	"firestige.xyz/dissector/pkg/plugin"
)

const (
	pluginName     = "file"
	defaultSnapLen = 65535

	pcapngMagic = 0x0A0D0D0A // section header block type
)

// Config represents file capturer configuration.
type Config struct {
	Path      string `mapstructure:"path"`       // required
	BPFFilter string `mapstructure:"bpf_filter"` // optional, evaluated in user space
	SnapLen   int    `mapstructure:"snap_len"`   // optional, used to compile the filter
}

// packetReader is satisfied by both pcapgo.Reader and pcapgo.NgReader.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// FileCapturer replays frames from a capture file as fast as the pipeline
// accepts them. Nothing is dropped.
type FileCapturer struct {
	name    string
	config  Config
	matcher *utils.BPFMatcher

	packetsReceived atomic.Uint64
	packetsFiltered atomic.Uint64
}

// NewFileCapturer creates a new file capturer instance.
func NewFileCapturer() plugin.Capturer {
	return &FileCapturer{name: pluginName}
}

// Name returns the plugin name.
func (c *FileCapturer) Name() string {
	return c.name
}

// Init initializes the capturer with configuration.
func (c *FileCapturer) Init(cfg map[string]any) error {
	c.config = Config{SnapLen: defaultSnapLen}
	if err := plugin.DecodeConfig(cfg, &c.config); err != nil {
		return fmt.Errorf("file: %w", err)
	}
	if c.config.Path == "" {
		return fmt.Errorf("file: %w: path is required", core.ErrConfigInvalid)
	}
	if c.config.BPFFilter != "" {
		m, err := utils.NewBPFMatcher(c.config.BPFFilter, c.config.SnapLen)
		if err != nil {
			return fmt.Errorf("file: %w: %v", core.ErrConfigInvalid, err)
		}
		c.matcher = m
	}

	slog.Debug("file capturer initialized", "path", c.config.Path, "bpf_filter", c.config.BPFFilter)
	return nil
}

// Start is a no-op; the file is opened by Capture.
func (c *FileCapturer) Start(ctx context.Context) error { return nil }

// Stop is a no-op; Capture closes the file when it returns.
func (c *FileCapturer) Stop(ctx context.Context) error { return nil }

// Capture reads every frame of the file into output. It returns nil at end of
// file and ctx.Err() when cancelled first.
func (c *FileCapturer) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	f, err := os.Open(c.config.Path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()

	r, err := openReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("%s: %w", c.config.Path, err)
	}
	if lt := r.LinkType(); lt != layers.LinkTypeEthernet {
		return fmt.Errorf("%s: unsupported link type %s, only Ethernet is decoded", c.config.Path, lt)
	}

	slog.Info("file capture started", "path", c.config.Path)

	for {
		data, ci, err := r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			slog.Info("file capture finished", "path", c.config.Path,
				"packets", c.packetsReceived.Load(), "filtered", c.packetsFiltered.Load())
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: read frame %d: %w", c.config.Path, c.packetsReceived.Load()+1, err)
		}
		c.packetsReceived.Add(1)

		if c.matcher != nil && !c.matcher.Match(data) {
			c.packetsFiltered.Add(1)
			continue
		}

		raw := core.RawPacket{
			Data:           data,
			Timestamp:      ci.Timestamp,
			CaptureLen:     uint32(ci.CaptureLength),
			OrigLen:        uint32(ci.Length),
			InterfaceIndex: ci.InterfaceIndex,
		}
		select {
		case output <- raw:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// openReader picks the pcapng or classic pcap reader from the leading magic.
func openReader(r *bufio.Reader) (packetReader, error) {
	magic, err := r.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if binary.LittleEndian.Uint32(magic) == pcapngMagic {
		return pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(r)
}

// Stats returns capture statistics. Frames rejected by the filter count as
// received, not dropped.
func (c *FileCapturer) Stats() plugin.CaptureStats {
	return plugin.CaptureStats{
		PacketsReceived: c.packetsReceived.Load(),
	}
}
