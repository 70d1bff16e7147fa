// Package pipeline implements the frame processing pipeline engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/metrics"
	"firestige.xyz/dissector/pkg/plugin"
)

// Pipeline moves frames from one capturer through a pool of decode workers,
// the processor chain and every reporter.
type Pipeline struct {
	sessionID  string
	source     string
	capturer   plugin.Capturer
	decoder    decoder.Decoder
	processors []plugin.Processor
	reporters  []plugin.Reporter
	workers    int
	metrics    *Metrics

	rawPacketChan chan core.RawPacket

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
	started bool
}

// Config contains pipeline configuration.
type Config struct {
	SessionID  string // generated when empty
	Capturer   plugin.Capturer
	Decoder    decoder.Decoder
	Processors []plugin.Processor
	Reporters  []plugin.Reporter
	Workers    int // decode goroutines
	BufferSize int // raw packet channel buffer size
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.NewStandardDecoder(decoder.Config{})
	}

	source := ""
	if cfg.Capturer != nil {
		source = cfg.Capturer.Name()
	}

	return &Pipeline{
		sessionID:     cfg.SessionID,
		source:        source,
		capturer:      cfg.Capturer,
		decoder:       cfg.Decoder,
		processors:    cfg.Processors,
		reporters:     cfg.Reporters,
		workers:       cfg.Workers,
		metrics:       NewMetrics(cfg.SessionID),
		rawPacketChan: make(chan core.RawPacket, cfg.BufferSize),
	}
}

// SessionID returns the id stamped on every output packet.
func (p *Pipeline) SessionID() string { return p.sessionID }

// Run starts the plugins, processes frames until the capturer is exhausted or
// ctx is cancelled, then flushes and stops the plugins. A pipeline runs once.
// The returned error is the capturer's, unless it only reports cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.capturer == nil {
		return fmt.Errorf("%w: pipeline has no capturer", core.ErrConfigInvalid)
	}

	if err := p.startPlugins(ctx); err != nil {
		return err
	}
	defer p.stopPlugins()

	slog.Info("pipeline starting", "session_id", p.sessionID, "source", p.source, "workers", p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.processLoop(ctx, &wg)
	}

	captureErr := p.capturer.Capture(ctx, p.rawPacketChan)
	close(p.rawPacketChan)
	wg.Wait()

	p.flushReporters()

	stats := p.Stats()
	slog.Info("pipeline stopped", "session_id", p.sessionID,
		"received", stats.Received, "decoded", stats.Decoded, "failed", stats.DecodeErrors,
		"dropped", stats.Dropped, "reported", stats.Reported)

	if captureErr != nil && ctx.Err() == nil && !errors.Is(captureErr, core.ErrSourceClosed) {
		return fmt.Errorf("capture failed: %w", captureErr)
	}
	return nil
}

// Start runs the pipeline in the background.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("pipeline %s already started", p.sessionID)
	}
	p.started = true

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		err := p.Run(ctx)
		p.mu.Lock()
		p.runErr = err
		p.mu.Unlock()
	}()
	return nil
}

// Done is closed once a pipeline launched with Start has finished.
func (p *Pipeline) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stop cancels a pipeline launched with Start and waits for it to finish.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return core.ErrPipelineStopped
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runErr
}

// startPlugins starts reporters, then processors, then the capturer. When a
// Start fails, the plugins already started are stopped in reverse order.
func (p *Pipeline) startPlugins(ctx context.Context) error {
	var started []plugin.Plugin
	fail := func(kind string, pl plugin.Plugin, err error) error {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(started) - 1; i >= 0; i-- {
			if serr := started[i].Stop(stopCtx); serr != nil {
				slog.Error("plugin stop failed", "plugin", started[i].Name(), "error", serr)
			}
		}
		return fmt.Errorf("start %s %s: %w", kind, pl.Name(), err)
	}

	for _, r := range p.reporters {
		if err := r.Start(ctx); err != nil {
			return fail("reporter", r, err)
		}
		started = append(started, r)
	}
	for _, proc := range p.processors {
		if err := proc.Start(ctx); err != nil {
			return fail("processor", proc, err)
		}
		started = append(started, proc)
	}
	if err := p.capturer.Start(ctx); err != nil {
		return fail("capturer", p.capturer, err)
	}
	return nil
}

// stopPlugins stops the capturer first and reporters last.
func (p *Pipeline) stopPlugins() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.capturer.Stop(ctx); err != nil {
		slog.Error("capturer stop failed", "capturer", p.capturer.Name(), "error", err)
	}
	for _, proc := range p.processors {
		if err := proc.Stop(ctx); err != nil {
			slog.Error("processor stop failed", "processor", proc.Name(), "error", err)
		}
	}
	for _, r := range p.reporters {
		if err := r.Stop(ctx); err != nil {
			slog.Error("reporter stop failed", "reporter", r.Name(), "error", err)
		}
	}
}

func (p *Pipeline) flushReporters() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, reporter := range p.reporters {
		if err := reporter.Flush(ctx); err != nil {
			slog.Error("reporter flush failed", "reporter", reporter.Name(), "error", err)
		}
	}
}

// processLoop drains the raw packet channel until it is closed or ctx ends.
func (p *Pipeline) processLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case raw, ok := <-p.rawPacketChan:
			if !ok {
				return
			}
			seq := p.metrics.Received.Add(1)
			metrics.CapturePacketsTotal.WithLabelValues(p.source).Inc()
			metrics.FramesTotal.WithLabelValues(metrics.StageCaptured).Inc()

			p.processPacket(ctx, seq, raw)
		}
	}
}

// processPacket takes one frame through decode, processors and reporters.
// A decode error does not stop the frame: the layers decoded before it are
// still reported, with the error attached.
func (p *Pipeline) processPacket(ctx context.Context, seq uint64, raw core.RawPacket) {
	start := time.Now()
	decoded, err := p.decoder.Decode(raw)
	metrics.DecodeLatencySeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		p.metrics.DecodeErrors.Add(1)
		metrics.FramesTotal.WithLabelValues(metrics.StageFailed).Inc()
		metrics.DecodeErrorsTotal.WithLabelValues(errorLayer(err), core.Reason(err)).Inc()
		lastGood := "none"
		if top := decoded.Top(); top != nil {
			lastGood = top.Name()
		}
		slog.Debug("frame decode failed", "session_id", p.sessionID, "seq", seq, "after", lastGood, "error", err)
	} else {
		p.metrics.Decoded.Add(1)
		metrics.FramesTotal.WithLabelValues(metrics.StageDecoded).Inc()
	}

	output := newOutputPacket(p.sessionID, seq, &decoded)
	for _, layer := range decoded.Layers() {
		metrics.LayersTotal.WithLabelValues(layer.Kind().String(), protocolLabel(layer)).Inc()
	}

	for _, processor := range p.processors {
		keep := processor.Process(output)
		p.metrics.Processed.Add(1)
		if !keep {
			p.metrics.Dropped.Add(1)
			metrics.FramesTotal.WithLabelValues(metrics.StageDropped).Inc()
			metrics.ProcessorDropsTotal.WithLabelValues(processor.Name()).Inc()
			return
		}
	}

	for _, reporter := range p.reporters {
		if err := reporter.Report(ctx, output); err != nil {
			p.metrics.ReportErrors.Add(1)
			metrics.ReporterErrorsTotal.WithLabelValues(reporter.Name()).Inc()
			slog.Error("reporter failed", "reporter", reporter.Name(), "seq", seq, "error", err)
		}
	}
	p.metrics.Reported.Add(1)
	metrics.FramesTotal.WithLabelValues(metrics.StageReported).Inc()
}

func newOutputPacket(sessionID string, seq uint64, decoded *core.DecodedPacket) *core.OutputPacket {
	layers := decoded.Layers()
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name()
	}

	var warnings []string
	for _, w := range decoded.Warnings {
		warnings = append(warnings, w.Error())
	}

	out := &core.OutputPacket{
		SessionID:  sessionID,
		Seq:        seq,
		Timestamp:  decoded.Timestamp,
		CaptureLen: decoded.CaptureLen,
		OrigLen:    decoded.OrigLen,
		Layers:     names,
		Labels:     BuildLabels(decoded),
		Warnings:   warnings,
		Decoded:    decoded,
	}
	if decoded.Err != nil {
		out.Error = decoded.Err.Error()
	}
	return out
}

func errorLayer(err error) string {
	var de *core.DecodeError
	if errors.As(err, &de) {
		return de.Layer
	}
	return "unknown"
}

// protocolLabel keeps unknown discriminants out of metric label values.
func protocolLabel(l core.Layer) string {
	if _, ok := l.(core.UnknownLayer); ok {
		return "unknown"
	}
	return l.Name()
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.Snapshot()
}
