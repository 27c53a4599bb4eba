package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/recast-io/recast/pkg/config"
	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

func init() {
	Register("http", func(cfg config.SinkConfig) (Sink, error) {
		return NewHTTPSink(cfg), nil
	})
}

// HTTPSink forwards records to a remote event store as NDJSON batches.
// A batch is flushed when it reaches the configured size and on Close, so
// record order is preserved end to end. Failed requests are retried with
// backoff; 4xx responses are not retried, since resending the same batch
// cannot succeed.
type HTTPSink struct {
	cfg     config.SinkConfig
	client  *http.Client
	buffer  bytes.Buffer
	encoder *gojson.Encoder
	pending int
	written int64
}

// NewHTTPSink creates an HTTP event-store sink.
func NewHTTPSink(cfg config.SinkConfig) *HTTPSink {
	return &HTTPSink{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Open prepares the batch encoder.
func (s *HTTPSink) Open(ctx context.Context) error {
	s.encoder = gojson.NewEncoder(&s.buffer)
	return nil
}

// Write buffers one record, flushing when the batch is full.
func (s *HTTPSink) Write(ctx context.Context, record models.OutputRecord) error {
	if s.encoder == nil {
		return recerrors.New(recerrors.ErrorTypeInternal, "sink not opened")
	}

	if err := s.encoder.Encode(record); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeSink, "failed to encode record")
	}
	s.pending++

	if s.pending >= s.cfg.BatchSize {
		return s.flush(ctx)
	}
	return nil
}

// Close flushes the remaining batch.
func (s *HTTPSink) Close(ctx context.Context) error {
	if s.pending > 0 {
		return s.flush(ctx)
	}
	return nil
}

// Written returns the number of records acknowledged by the event store.
func (s *HTTPSink) Written() int64 {
	return s.written
}

// flush posts the buffered batch, retrying transport errors and 5xx
// responses with linear backoff. The idempotency key is stable across
// retries of the same batch so the event store can deduplicate.
func (s *HTTPSink) flush(ctx context.Context) error {
	body := make([]byte, s.buffer.Len())
	copy(body, s.buffer.Bytes())
	count := s.pending
	idempotencyKey := uuid.NewString()

	s.buffer.Reset()
	s.pending = 0

	attempts := s.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * s.cfg.RetryDelay):
			case <-ctx.Done():
				return recerrors.Wrap(ctx.Err(), recerrors.ErrorTypeSink, "flush cancelled")
			}
		}

		retryable, err := s.post(ctx, body, idempotencyKey)
		if err == nil {
			s.written += int64(count)
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return recerrors.Wrap(lastErr, recerrors.ErrorTypeSink, "failed to deliver batch").
		WithDetail("records", count).
		WithDetail("url", s.cfg.URL)
}

// post sends one batch. The boolean return reports whether the failure is
// worth retrying.
func (s *HTTPSink) post(ctx context.Context, body []byte, idempotencyKey string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return true, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("event store returned %s", resp.Status)
	default:
		return false, fmt.Errorf("event store returned %s", resp.Status)
	}
}
