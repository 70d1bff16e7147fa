// Package kafka implements Kafka reporter plugin.
// Sends one JSON record per frame, with labels carried as message headers.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/record"
	"firestige.xyz/dissector/pkg/plugin"
)

const (
	defaultBatchSize    = 100
	defaultBatchTimeout = 100 * time.Millisecond
	defaultCompression  = "snappy"
	defaultMaxAttempts  = 3
)

// messageWriter is the part of *kafka.Writer the reporter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReporter sends packets to Kafka.
type KafkaReporter struct {
	name   string
	writer messageWriter
	config Config

	// Statistics
	reportedCount atomic.Uint64
	errorCount    atomic.Uint64
}

// Config represents Kafka reporter configuration.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`       // required
	Topic        string        `mapstructure:"topic"`         // required
	BatchSize    int           `mapstructure:"batch_size"`    // optional, default 100
	BatchTimeout time.Duration `mapstructure:"batch_timeout"` // optional, default 100ms
	Compression  string        `mapstructure:"compression"`   // optional: none|gzip|snappy|lz4|zstd, default snappy
	MaxAttempts  int           `mapstructure:"max_attempts"`  // optional, default 3
	Async        bool          `mapstructure:"async"`         // optional, fire and forget
}

// NewKafkaReporter creates a new Kafka reporter.
func NewKafkaReporter() plugin.Reporter {
	return &KafkaReporter{
		name: "kafka",
	}
}

// Name returns the plugin name.
func (r *KafkaReporter) Name() string {
	return r.name
}

// Init validates the configuration and creates the writer. No connection is
// made until the first write.
func (r *KafkaReporter) Init(config map[string]any) error {
	cfg := Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Compression:  defaultCompression,
		MaxAttempts:  defaultMaxAttempts,
	}
	if err := plugin.DecodeConfig(config, &cfg); err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka: %w: brokers is required", core.ErrConfigInvalid)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("kafka: %w: topic is required", core.ErrConfigInvalid)
	}
	if cfg.BatchSize <= 0 || cfg.MaxAttempts <= 0 || cfg.BatchTimeout <= 0 {
		return fmt.Errorf("kafka: %w: batch_size, batch_timeout and max_attempts must be positive", core.ErrConfigInvalid)
	}

	codec, err := parseCompression(cfg.Compression)
	if err != nil {
		return fmt.Errorf("kafka: %w: %v", core.ErrConfigInvalid, err)
	}

	r.config = cfg
	r.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // same key, same partition
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		Compression:  codec,
		RequiredAcks: kafka.RequireOne,
		Async:        cfg.Async,
	}
	return nil
}

func parseCompression(name string) (kafka.Compression, error) {
	switch name {
	case "none", "":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("invalid compression type: %s", name)
	}
}

// Start starts the reporter.
func (r *KafkaReporter) Start(ctx context.Context) error {
	slog.Info("kafka reporter started",
		"brokers", r.config.Brokers,
		"topic", r.config.Topic,
		"batch_size", r.config.BatchSize,
		"batch_timeout", r.config.BatchTimeout,
		"compression", r.config.Compression,
	)
	return nil
}

// Stop closes the writer, which flushes pending messages.
func (r *KafkaReporter) Stop(ctx context.Context) error {
	if r.writer != nil {
		if err := r.writer.Close(); err != nil {
			slog.Error("error closing kafka writer", "error", err)
			return err
		}
	}

	slog.Info("kafka reporter stopped",
		"total_reported", r.reportedCount.Load(),
		"total_errors", r.errorCount.Load(),
	)
	return nil
}

// Report sends a packet to Kafka.
func (r *KafkaReporter) Report(ctx context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}

	msg, err := buildMessage(pkt)
	if err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("serialize packet failed: %w", err)
	}

	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("kafka write failed: %w", err)
	}

	r.reportedCount.Add(1)
	return nil
}

// buildMessage keys by source address so a host's frames share a partition;
// frames without a network layer are keyed by session.
func buildMessage(pkt *core.OutputPacket) (kafka.Message, error) {
	value, err := record.MarshalJSON(pkt)
	if err != nil {
		return kafka.Message{}, err
	}

	key := pkt.Labels[core.LabelIPSrc]
	if key == "" {
		key = pkt.SessionID
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  pkt.Timestamp,
	}

	if len(pkt.Labels) > 0 {
		keys := make([]string, 0, len(pkt.Labels))
		for k := range pkt.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msg.Headers = make([]kafka.Header, 0, len(keys))
		for _, k := range keys {
			msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(pkt.Labels[k])})
		}
	}
	return msg, nil
}

// Flush is a no-op: kafka.Writer flushes on BatchSize or BatchTimeout, and
// synchronous writes have already been acknowledged.
func (r *KafkaReporter) Flush(ctx context.Context) error {
	return nil
}
