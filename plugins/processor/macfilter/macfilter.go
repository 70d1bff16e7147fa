// Package macfilter implements a processor that keeps frames addressed to
// (or sent from) a set of hardware addresses.
package macfilter

import (
	"context"
	"fmt"
	"log/slog"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/pkg/plugin"
)

const pluginName = "macfilter"

// Match directions.
const (
	MatchDestination = "destination"
	MatchSource      = "source"
	MatchEither      = "either"
)

// Config represents macfilter configuration.
type Config struct {
	Addresses []string `mapstructure:"addresses"` // required
	Match     string   `mapstructure:"match"`     // destination (default) | source | either
	Invert    bool     `mapstructure:"invert"`    // drop matching frames instead
}

// MACFilter is a Processor. Frames too short to carry an Ethernet header
// never match.
type MACFilter struct {
	name   string
	match  string
	invert bool
	addrs  map[core.MAC]struct{}
}

// NewMACFilter creates a new macfilter processor.
func NewMACFilter() plugin.Processor {
	return &MACFilter{name: pluginName}
}

// Name returns the plugin name.
func (f *MACFilter) Name() string {
	return f.name
}

// Init parses the address list.
func (f *MACFilter) Init(cfg map[string]any) error {
	conf := Config{Match: MatchDestination}
	if err := plugin.DecodeConfig(cfg, &conf); err != nil {
		return fmt.Errorf("macfilter: %w", err)
	}
	if len(conf.Addresses) == 0 {
		return fmt.Errorf("macfilter: %w: at least one address is required", core.ErrConfigInvalid)
	}
	switch conf.Match {
	case MatchDestination, MatchSource, MatchEither:
	default:
		return fmt.Errorf("macfilter: %w: invalid match %q", core.ErrConfigInvalid, conf.Match)
	}

	f.addrs = make(map[core.MAC]struct{}, len(conf.Addresses))
	for _, s := range conf.Addresses {
		mac, err := core.ParseMAC(s)
		if err != nil {
			return fmt.Errorf("macfilter: %w: %v", core.ErrConfigInvalid, err)
		}
		f.addrs[mac] = struct{}{}
	}
	f.match = conf.Match
	f.invert = conf.Invert
	return nil
}

// Start logs the address set.
func (f *MACFilter) Start(ctx context.Context) error {
	slog.Info("macfilter started", "addresses", len(f.addrs), "match", f.match, "invert", f.invert)
	return nil
}

// Stop is a no-op.
func (f *MACFilter) Stop(ctx context.Context) error { return nil }

// Process keeps pkt when its addresses match, or when they don't and the
// filter is inverted.
func (f *MACFilter) Process(pkt *core.OutputPacket) bool {
	return f.matches(pkt) != f.invert
}

func (f *MACFilter) matches(pkt *core.OutputPacket) bool {
	if pkt.Decoded == nil || pkt.Decoded.Link.Payload == nil {
		return false
	}
	link := pkt.Decoded.Link
	_, dst := f.addrs[link.Destination]
	_, src := f.addrs[link.Source]
	switch f.match {
	case MatchSource:
		return src
	case MatchEither:
		return src || dst
	default:
		return dst
	}
}
