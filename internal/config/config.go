// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/dissector/internal/core"
)

// Config represents the top-level configuration.
// Maps to the `dissector:` root key in YAML.
type Config struct {
	Log        LogConfig      `mapstructure:"log"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
	Decoder    DecoderConfig  `mapstructure:"decoder"`
	Pipeline   PipelineConfig `mapstructure:"pipeline"`
	Capture    CaptureConfig  `mapstructure:"capture"`
	Processors []PluginConfig `mapstructure:"processors"`
	Reporters  []PluginConfig `mapstructure:"reporters"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Decoder ───

// DecoderConfig selects which ports carry DNS.
type DecoderConfig struct {
	DNSPorts   []uint16 `mapstructure:"dns_ports"`
	DNSOverTCP bool     `mapstructure:"dns_over_tcp"`
}

// ─── Pipeline ───

// PipelineConfig sizes the decode stage.
type PipelineConfig struct {
	Workers    int `mapstructure:"workers"`     // decode goroutines
	BufferSize int `mapstructure:"buffer_size"` // capture -> decode channel capacity
}

// ─── Capture ───

// CaptureConfig configures frame acquisition. Interface selects live
// capture, File selects offline reading; the CLI sets one of them.
type CaptureConfig struct {
	Interface    string `mapstructure:"interface"`
	File         string `mapstructure:"file"`
	BPFFilter    string `mapstructure:"bpf_filter"`
	SnapLen      int    `mapstructure:"snap_len"`
	BufferSizeMB int    `mapstructure:"buffer_size_mb"`
	FanoutID     int    `mapstructure:"fanout_id"` // 0 = no fanout
}

// PluginConfig names a processor or reporter and carries its settings,
// decoded by the plugin's Init.
type PluginConfig struct {
	Name   string         `mapstructure:"name"`
	Config map[string]any `mapstructure:"config"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `dissector: ...`.
type configRoot struct {
	Dissector Config `mapstructure:"dissector"`
}

// Load loads configuration from file. An empty path yields defaults plus
// environment overrides.
// The YAML file uses `dissector:` as root key; env vars use the DISSECTOR_ prefix (e.g., DISSECTOR_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Key "dissector.log.level" maps to env "DISSECTOR_LOG_LEVEL" via the replacer.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Dissector

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use "dissector." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("dissector.log.level", "info")
	v.SetDefault("dissector.log.format", "text")
	v.SetDefault("dissector.log.outputs.file.enabled", false)
	v.SetDefault("dissector.log.outputs.file.path", "/var/log/dissector/dissector.log")
	v.SetDefault("dissector.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("dissector.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("dissector.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("dissector.log.outputs.file.rotation.compress", true)

	// Metrics defaults
	v.SetDefault("dissector.metrics.enabled", false)
	v.SetDefault("dissector.metrics.listen", ":9091")
	v.SetDefault("dissector.metrics.path", "/metrics")

	// Decoder defaults
	v.SetDefault("dissector.decoder.dns_ports", []uint16{53})
	v.SetDefault("dissector.decoder.dns_over_tcp", false)

	// Pipeline defaults
	v.SetDefault("dissector.pipeline.workers", 1)
	v.SetDefault("dissector.pipeline.buffer_size", 4096)

	// Capture defaults
	v.SetDefault("dissector.capture.interface", "")
	v.SetDefault("dissector.capture.file", "")
	v.SetDefault("dissector.capture.bpf_filter", "")
	v.SetDefault("dissector.capture.snap_len", 65535)
	v.SetDefault("dissector.capture.buffer_size_mb", 8)
	v.SetDefault("dissector.capture.fanout_id", 0)
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
// Every returned error wraps core.ErrConfigInvalid.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return invalid("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return invalid("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return invalid("log.outputs.file.path is required when file output is enabled")
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return invalid("metrics.listen is required when metrics are enabled")
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// ── Decoder ──
	for _, p := range cfg.Decoder.DNSPorts {
		if p == 0 {
			return invalid("decoder.dns_ports: port 0 is not valid")
		}
	}

	// ── Pipeline ──
	if cfg.Pipeline.Workers < 1 {
		return invalid("pipeline.workers must be at least 1, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.BufferSize < 1 {
		return invalid("pipeline.buffer_size must be at least 1, got %d", cfg.Pipeline.BufferSize)
	}

	// ── Capture ──
	if cfg.Capture.SnapLen <= 0 || cfg.Capture.SnapLen > 262144 {
		return invalid("capture.snap_len out of range: %d", cfg.Capture.SnapLen)
	}
	if cfg.Capture.BufferSizeMB <= 0 {
		return invalid("capture.buffer_size_mb must be positive, got %d", cfg.Capture.BufferSizeMB)
	}
	if cfg.Capture.FanoutID < 0 || cfg.Capture.FanoutID > 0xFFFF {
		return invalid("capture.fanout_id out of range: %d", cfg.Capture.FanoutID)
	}

	// ── Plugins ──
	for i, p := range cfg.Processors {
		if p.Name == "" {
			return invalid("processors[%d].name is required", i)
		}
	}
	for i, r := range cfg.Reporters {
		if r.Name == "" {
			return invalid("reporters[%d].name is required", i)
		}
	}
	if len(cfg.Reporters) == 0 {
		cfg.Reporters = []PluginConfig{{Name: "console", Config: map[string]any{"format": "json"}}}
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrConfigInvalid, fmt.Sprintf(format, args...))
}
