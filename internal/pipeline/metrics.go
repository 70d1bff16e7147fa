package pipeline

import (
	"sync/atomic"
)

// Metrics contains per-pipeline counters. The prometheus vectors in
// internal/metrics aggregate across pipelines; these stay per session.
type Metrics struct {
	SessionID string

	Received     atomic.Uint64
	Decoded      atomic.Uint64
	DecodeErrors atomic.Uint64
	Processed    atomic.Uint64
	Dropped      atomic.Uint64
	Reported     atomic.Uint64
	ReportErrors atomic.Uint64
}

// NewMetrics creates a new metrics instance.
func NewMetrics(sessionID string) *Metrics {
	return &Metrics{SessionID: sessionID}
}

// Snapshot reads every counter.
func (m *Metrics) Snapshot() Stats {
	return Stats{
		Received:     m.Received.Load(),
		Decoded:      m.Decoded.Load(),
		DecodeErrors: m.DecodeErrors.Load(),
		Processed:    m.Processed.Load(),
		Dropped:      m.Dropped.Load(),
		Reported:     m.Reported.Load(),
		ReportErrors: m.ReportErrors.Load(),
	}
}

// Reset resets all counters to zero.
func (m *Metrics) Reset() {
	m.Received.Store(0)
	m.Decoded.Store(0)
	m.DecodeErrors.Store(0)
	m.Processed.Store(0)
	m.Dropped.Store(0)
	m.Reported.Store(0)
	m.ReportErrors.Store(0)
}

// Stats represents pipeline statistics. Received equals Decoded plus
// DecodeErrors once the pipeline has drained.
type Stats struct {
	Received     uint64
	Decoded      uint64
	DecodeErrors uint64
	Processed    uint64 // processor invocations
	Dropped      uint64
	Reported     uint64
	ReportErrors uint64
}
