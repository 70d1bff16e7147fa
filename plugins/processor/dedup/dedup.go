// Package dedup implements a processor that drops DNS frames whose questions
// have all been seen before, remembered in a bloom filter.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/pkg/plugin"
)

const (
	pluginName = "dedup"

	defaultCapacity          = 1 << 20
	defaultFalsePositiveRate = 0.01
)

// Config represents dedup configuration.
type Config struct {
	Capacity          uint    `mapstructure:"capacity"`            // expected distinct questions
	FalsePositiveRate float64 `mapstructure:"false_positive_rate"` // (0, 1)
	StateFile         string  `mapstructure:"state_file"`          // optional, loaded on Start and saved on Stop
}

// Dedup is a Processor. Frames without a DNS message always pass. Queries
// and responses are remembered separately, so the first answer to a
// question is kept even after the query was seen.
type Dedup struct {
	name   string
	config Config

	mu     sync.Mutex
	filter *bloom.BloomFilter

	dropped atomic.Uint64
}

// NewDedup creates a new dedup processor.
func NewDedup() plugin.Processor {
	return &Dedup{name: pluginName}
}

// Name returns the plugin name.
func (d *Dedup) Name() string {
	return d.name
}

// Init sizes the filter.
func (d *Dedup) Init(cfg map[string]any) error {
	d.config = Config{
		Capacity:          defaultCapacity,
		FalsePositiveRate: defaultFalsePositiveRate,
	}
	if err := plugin.DecodeConfig(cfg, &d.config); err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	if d.config.Capacity == 0 {
		return fmt.Errorf("dedup: %w: capacity must be positive", core.ErrConfigInvalid)
	}
	if d.config.FalsePositiveRate <= 0 || d.config.FalsePositiveRate >= 1 {
		return fmt.Errorf("dedup: %w: false_positive_rate must be in (0, 1), got %v",
			core.ErrConfigInvalid, d.config.FalsePositiveRate)
	}

	d.filter = bloom.NewWithEstimates(d.config.Capacity, d.config.FalsePositiveRate)
	return nil
}

// Start loads the saved filter, if one exists.
func (d *Dedup) Start(ctx context.Context) error {
	if d.config.StateFile == "" {
		return nil
	}
	data, err := os.ReadFile(d.config.StateFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dedup: read state: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.filter.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("dedup: load state %s: %w", d.config.StateFile, err)
	}
	slog.Info("dedup state loaded", "path", d.config.StateFile, "approx_entries", d.filter.ApproximatedSize())
	return nil
}

// Stop saves the filter when a state file is configured.
func (d *Dedup) Stop(ctx context.Context) error {
	slog.Info("dedup stopped", "dropped", d.dropped.Load())
	if d.config.StateFile == "" {
		return nil
	}

	d.mu.Lock()
	data, err := d.filter.MarshalBinary()
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("dedup: encode state: %w", err)
	}
	if err := os.WriteFile(d.config.StateFile, data, 0o644); err != nil {
		return fmt.Errorf("dedup: save state: %w", err)
	}
	return nil
}

// Process drops pkt when every question in its DNS message was seen before.
// A message with no questions passes.
func (d *Dedup) Process(pkt *core.OutputPacket) bool {
	if pkt.Decoded == nil {
		return true
	}
	msg, ok := pkt.Decoded.DNS()
	if !ok || len(msg.Question) == 0 {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	fresh := false
	for _, q := range msg.Question {
		if !d.filter.TestAndAdd(questionKey(msg.Response(), q)) {
			fresh = true
		}
	}
	if !fresh {
		d.dropped.Add(1)
	}
	return fresh
}

// questionKey is case-insensitive on the name, as DNS is.
func questionKey(response bool, q core.DNSQuestion) []byte {
	var sb strings.Builder
	if response {
		sb.WriteString("R|")
	} else {
		sb.WriteString("Q|")
	}
	sb.WriteString(strings.ToLower(q.Name))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(int(q.Type)))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(int(q.Class)))
	return []byte(sb.String())
}
