// Package sink provides the event-record sinks validated output records
// are forwarded to. The core makes one promise to a sink: records arrive
// one at a time, in translation order. Batching beyond that is each
// sink's own business.
package sink

import (
	"context"
	"sort"
	"sync"

	"github.com/recast-io/recast/pkg/config"
	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

// Sink accepts translated, validated output records.
type Sink interface {
	// Open prepares the sink for writing.
	Open(ctx context.Context) error
	// Write forwards one record. Records arrive in translation order.
	Write(ctx context.Context, record models.OutputRecord) error
	// Close flushes buffered records and releases resources.
	Close(ctx context.Context) error
}

// Factory creates a sink from the sink configuration section.
type Factory func(cfg config.SinkConfig) (Sink, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers a sink factory under a type name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// New creates a sink of the configured type.
func New(cfg config.SinkConfig) (Sink, error) {
	registryMu.RLock()
	factory, ok := factories[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, recerrors.Newf(recerrors.ErrorTypeConfig, "no sink registered for type %q", cfg.Type)
	}
	return factory(cfg)
}

// Types returns the registered sink type names, sorted.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
