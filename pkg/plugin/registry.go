package plugin

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/dissector/internal/core"
)

// Factory functions create fresh, uninitialized plugin instances.
type (
	CapturerFactory  func() Capturer
	ProcessorFactory func() Processor
	ReporterFactory  func() Reporter
)

type registry[F any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]F
}

func newRegistry[F any](kind string) *registry[F] {
	return &registry[F]{kind: kind, factories: make(map[string]F)}
}

func (r *registry[F]) register(name string, f F) {
	if name == "" {
		panic(fmt.Sprintf("plugin: empty %s name", r.kind))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("plugin: %s %q registered twice", r.kind, name))
	}
	r.factories[name] = f
}

func (r *registry[F]) get(name string) (F, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return f, fmt.Errorf("%w: %s %q", core.ErrPluginNotFound, r.kind, name)
	}
	return f, nil
}

func (r *registry[F]) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every registration. Tests only.
func (r *registry[F]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]F)
}

var (
	capturerReg  = newRegistry[CapturerFactory]("capturer")
	processorReg = newRegistry[ProcessorFactory]("processor")
	reporterReg  = newRegistry[ReporterFactory]("reporter")
)

// RegisterCapturer registers a capturer factory. It panics on an empty name,
// a nil factory or a duplicate name; call it from init.
func RegisterCapturer(name string, f CapturerFactory) {
	if f == nil {
		panic("plugin: nil capturer factory for " + name)
	}
	capturerReg.register(name, f)
}

// RegisterProcessor registers a processor factory. Same rules as RegisterCapturer.
func RegisterProcessor(name string, f ProcessorFactory) {
	if f == nil {
		panic("plugin: nil processor factory for " + name)
	}
	processorReg.register(name, f)
}

// RegisterReporter registers a reporter factory. Same rules as RegisterCapturer.
func RegisterReporter(name string, f ReporterFactory) {
	if f == nil {
		panic("plugin: nil reporter factory for " + name)
	}
	reporterReg.register(name, f)
}

// GetCapturerFactory looks up a capturer. The error wraps core.ErrPluginNotFound.
func GetCapturerFactory(name string) (CapturerFactory, error) { return capturerReg.get(name) }

// GetProcessorFactory looks up a processor. The error wraps core.ErrPluginNotFound.
func GetProcessorFactory(name string) (ProcessorFactory, error) { return processorReg.get(name) }

// GetReporterFactory looks up a reporter. The error wraps core.ErrPluginNotFound.
func GetReporterFactory(name string) (ReporterFactory, error) { return reporterReg.get(name) }

// ListCapturers returns the registered capturer names, sorted.
func ListCapturers() []string { return capturerReg.list() }

// ListProcessors returns the registered processor names, sorted.
func ListProcessors() []string { return processorReg.list() }

// ListReporters returns the registered reporter names, sorted.
func ListReporters() []string { return reporterReg.list() }
