package sink

import (
	"context"
	"sync/atomic"

	"github.com/recast-io/recast/pkg/config"
	"github.com/recast-io/recast/pkg/models"
)

func init() {
	Register("discard", func(cfg config.SinkConfig) (Sink, error) {
		return &DiscardSink{}, nil
	})
}

// DiscardSink counts and drops records. Used for dry runs: the whole
// translation and validation path executes, nothing is persisted.
type DiscardSink struct {
	written int64
}

// Open is a no-op.
func (s *DiscardSink) Open(ctx context.Context) error { return nil }

// Write counts the record and drops it.
func (s *DiscardSink) Write(ctx context.Context, record models.OutputRecord) error {
	atomic.AddInt64(&s.written, 1)
	return nil
}

// Close is a no-op.
func (s *DiscardSink) Close(ctx context.Context) error { return nil }

// Written returns the number of records received.
func (s *DiscardSink) Written() int64 {
	return atomic.LoadInt64(&s.written)
}
