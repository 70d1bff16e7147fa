// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages used as the "stage" label.
const (
	StageCaptured = "captured"
	StageDecoded  = "decoded"
	StageFailed   = "failed"
	StageDropped  = "dropped"
	StageReported = "reported"
)

var (
	// CapturePacketsTotal counts frames read by each source
	CapturePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_capture_packets_total",
			Help: "Total number of frames read from a source",
		},
		[]string{"source"},
	)

	// FramesTotal counts frames passing each pipeline stage
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_frames_total",
			Help: "Total number of frames by pipeline stage",
		},
		[]string{"stage"},
	)

	// DecodeErrorsTotal counts decode failures by the layer that gave up and the reason
	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_decode_errors_total",
			Help: "Total number of frames whose decoding stopped on an error",
		},
		[]string{"layer", "reason"},
	)

	// LayersTotal counts decoded layers by position and protocol name
	LayersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_layers_total",
			Help: "Total number of decoded layers",
		},
		[]string{"layer", "protocol"},
	)

	// DecodeLatencySeconds measures time spent decoding one frame
	DecodeLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dissector_decode_latency_seconds",
			Help:    "Latency of decoding a single frame in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0000001, 2, 20), // 100ns to ~50ms
		},
	)

	// ProcessorDropsTotal counts frames dropped by each processor
	ProcessorDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_processor_drops_total",
			Help: "Total number of frames dropped by a processor",
		},
		[]string{"processor"},
	)

	// ReporterErrorsTotal counts reporter errors by name
	ReporterErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_reporter_errors_total",
			Help: "Total number of reporter errors",
		},
		[]string{"reporter"},
	)
)
