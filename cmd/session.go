package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/metrics"
	"firestige.xyz/dissector/internal/pipeline"
	"firestige.xyz/dissector/pkg/plugin"
)

// buildCapturer looks up and initializes a capturer.
func buildCapturer(name string, settings map[string]any) (plugin.Capturer, error) {
	factory, err := plugin.GetCapturerFactory(name)
	if err != nil {
		return nil, err
	}
	c := factory()
	if err := c.Init(settings); err != nil {
		return nil, fmt.Errorf("init capturer %s: %w", name, err)
	}
	return c, nil
}

// buildProcessors initializes the processor chain in configuration order.
func buildProcessors(cfgs []config.PluginConfig) ([]plugin.Processor, error) {
	out := make([]plugin.Processor, 0, len(cfgs))
	for i, pc := range cfgs {
		factory, err := plugin.GetProcessorFactory(pc.Name)
		if err != nil {
			return nil, fmt.Errorf("processors[%d]: %w", i, err)
		}
		p := factory()
		if err := p.Init(pc.Config); err != nil {
			return nil, fmt.Errorf("processors[%d] %s: %w", i, pc.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// buildReporters initializes every configured reporter.
func buildReporters(cfgs []config.PluginConfig) ([]plugin.Reporter, error) {
	out := make([]plugin.Reporter, 0, len(cfgs))
	for i, rc := range cfgs {
		factory, err := plugin.GetReporterFactory(rc.Name)
		if err != nil {
			return nil, fmt.Errorf("reporters[%d]: %w", i, err)
		}
		r := factory()
		if err := r.Init(rc.Config); err != nil {
			return nil, fmt.Errorf("reporters[%d] %s: %w", i, rc.Name, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// buildPipeline wires capturer, decoder and the configured plugins.
func buildPipeline(c *config.Config, capturer plugin.Capturer) (*pipeline.Pipeline, error) {
	processors, err := buildProcessors(c.Processors)
	if err != nil {
		return nil, err
	}
	reporters, err := buildReporters(c.Reporters)
	if err != nil {
		return nil, err
	}

	dec := decoder.NewStandardDecoder(decoder.Config{
		DNSPorts:   c.Decoder.DNSPorts,
		DNSOverTCP: c.Decoder.DNSOverTCP,
	})

	return pipeline.NewBuilder().
		WithCapturer(capturer).
		WithDecoder(dec).
		WithProcessors(processors...).
		WithReporters(reporters...).
		WithWorkers(c.Pipeline.Workers).
		WithBufferSize(c.Pipeline.BufferSize).
		Build(), nil
}

// runSession runs one pipeline until the source is exhausted or the process
// receives SIGINT/SIGTERM. The metrics server lives for the session. A live
// session runs in the background and is stopped on signal.
func runSession(ctx context.Context, c *config.Config, capturerName string, settings map[string]any, live bool) error {
	capturer, err := buildCapturer(capturerName, settings)
	if err != nil {
		return err
	}
	p, err := buildPipeline(c, capturer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Metrics.Enabled {
		srv := metrics.NewServer(c.Metrics.Listen, c.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				slog.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	start := time.Now()
	slog.Info("session started", "session_id", p.SessionID(), "capturer", capturerName)
	if live {
		if err := p.Start(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			slog.Info("stopping session", "session_id", p.SessionID())
		case <-p.Done():
		}
		err = p.Stop()
	} else {
		err = p.Run(ctx)
	}

	slog.Info("session finished", "session_id", p.SessionID(), "duration", time.Since(start), "error", err)
	return err
}
