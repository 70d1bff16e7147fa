package pipeline

import (
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/pkg/plugin"
)

// Builder provides a fluent interface for building pipelines.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			BufferSize: 1024,
			Workers:    1,
		},
	}
}

// WithSessionID sets the session id stamped on output packets.
func (b *Builder) WithSessionID(id string) *Builder {
	b.config.SessionID = id
	return b
}

// WithCapturer sets the frame source.
func (b *Builder) WithCapturer(c plugin.Capturer) *Builder {
	b.config.Capturer = c
	return b
}

// WithDecoder sets the frame decoder.
func (b *Builder) WithDecoder(d decoder.Decoder) *Builder {
	b.config.Decoder = d
	return b
}

// WithProcessors sets the processor chain.
func (b *Builder) WithProcessors(processors ...plugin.Processor) *Builder {
	b.config.Processors = processors
	return b
}

// WithReporters sets the reporters.
func (b *Builder) WithReporters(reporters ...plugin.Reporter) *Builder {
	b.config.Reporters = reporters
	return b
}

// WithWorkers sets the number of decode goroutines.
func (b *Builder) WithWorkers(n int) *Builder {
	b.config.Workers = n
	return b
}

// WithBufferSize sets the raw packet channel buffer size.
func (b *Builder) WithBufferSize(size int) *Builder {
	b.config.BufferSize = size
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() *Pipeline {
	return New(b.config)
}
