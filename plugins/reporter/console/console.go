// Package console implements a reporter writing one record per frame to
// stdout or a file.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/record"
	"firestige.xyz/dissector/pkg/plugin"
)

// Output formats.
const (
	FormatJSON = "json" // one object per line
	FormatYAML = "yaml" // one document per frame
	FormatText = "text" // one human-readable line per frame
)

// Config represents console reporter configuration.
type Config struct {
	Format string `mapstructure:"format"` // json (default) | yaml | text
	Path   string `mapstructure:"path"`   // empty or "-" means stdout
}

// ConsoleReporter writes records for every frame it is given. Writes are
// serialized, so records from concurrent workers never interleave.
type ConsoleReporter struct {
	name   string
	config Config

	mu      sync.Mutex
	out     io.Writer
	buf     *bufio.Writer
	file    *os.File
	jsonEnc *json.Encoder
	yamlEnc *yaml.Encoder

	reportedCount atomic.Uint64
}

// NewConsoleReporter creates a new console reporter.
func NewConsoleReporter() plugin.Reporter {
	return &ConsoleReporter{
		name:   "console",
		config: Config{Format: FormatJSON},
		out:    os.Stdout,
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(cfg map[string]any) error {
	if err := plugin.DecodeConfig(cfg, &r.config); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	switch r.config.Format {
	case FormatJSON, FormatYAML, FormatText:
	default:
		return fmt.Errorf("console: %w: invalid format %q, must be json, yaml or text",
			core.ErrConfigInvalid, r.config.Format)
	}
	return nil
}

// Start opens the output file, if one is configured.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Path != "" && r.config.Path != "-" {
		f, err := os.OpenFile(r.config.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("console: open output: %w", err)
		}
		r.file = f
		r.out = f
	}

	r.buf = bufio.NewWriter(r.out)
	switch r.config.Format {
	case FormatJSON:
		r.jsonEnc = json.NewEncoder(r.buf)
	case FormatYAML:
		r.yamlEnc = yaml.NewEncoder(r.buf)
		r.yamlEnc.SetIndent(2)
	}

	slog.Info("console reporter started", "format", r.config.Format, "path", r.config.Path)
	return nil
}

// Stop flushes and closes the output.
func (r *ConsoleReporter) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.yamlEnc != nil {
		err = r.yamlEnc.Close()
		r.yamlEnc = nil
	}
	if r.buf != nil {
		if ferr := r.buf.Flush(); err == nil {
			err = ferr
		}
	}
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
		r.file = nil
	}

	slog.Info("console reporter stopped", "total_reported", r.reportedCount.Load())
	return err
}

// Report writes one record.
func (r *ConsoleReporter) Report(ctx context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buf == nil {
		return fmt.Errorf("console reporter not started")
	}

	var err error
	switch r.config.Format {
	case FormatJSON:
		err = r.jsonEnc.Encode(record.New(pkt))
	case FormatYAML:
		err = r.yamlEnc.Encode(record.New(pkt))
	default:
		_, err = fmt.Fprintln(r.buf, record.Text(pkt))
	}
	if err != nil {
		return fmt.Errorf("console: write record: %w", err)
	}
	r.reportedCount.Add(1)
	return nil
}

// Flush pushes buffered records to the output.
func (r *ConsoleReporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buf == nil {
		return nil
	}
	return r.buf.Flush()
}
