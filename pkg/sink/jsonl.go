package sink

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/recast-io/recast/pkg/config"
	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

func init() {
	Register("jsonl", func(cfg config.SinkConfig) (Sink, error) {
		return NewJSONLSink(cfg), nil
	})
}

// JSONLSink writes one JSON object per line to a file, optionally gzip
// compressed. Writes are sequential and in arrival order.
type JSONLSink struct {
	cfg     config.SinkConfig
	file    *os.File
	gz      *gzip.Writer
	writer  *bufio.Writer
	encoder *gojson.Encoder
	written int64
}

// NewJSONLSink creates a JSONL file sink.
func NewJSONLSink(cfg config.SinkConfig) *JSONLSink {
	return &JSONLSink{cfg: cfg}
}

// Open creates the output file and the encoder chain.
func (s *JSONLSink) Open(ctx context.Context) error {
	file, err := os.Create(s.cfg.Path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeSink, "failed to create output file").
			WithDetail("path", s.cfg.Path)
	}
	s.file = file

	var out io.Writer = file
	if s.cfg.Gzip || strings.HasSuffix(s.cfg.Path, ".gz") {
		s.gz = gzip.NewWriter(file)
		out = s.gz
	}

	s.writer = bufio.NewWriterSize(out, 64*1024)
	s.encoder = gojson.NewEncoder(s.writer)
	return nil
}

// Write appends one record as a JSON line.
func (s *JSONLSink) Write(ctx context.Context, record models.OutputRecord) error {
	if s.encoder == nil {
		return recerrors.New(recerrors.ErrorTypeInternal, "sink not opened")
	}

	if err := s.encoder.Encode(record); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeSink, "failed to encode record")
	}
	s.written++
	return nil
}

// Close flushes and closes the output file.
func (s *JSONLSink) Close(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}

	if err := s.writer.Flush(); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeSink, "failed to flush output")
	}
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			return recerrors.Wrap(err, recerrors.ErrorTypeSink, "failed to close gzip stream")
		}
	}
	if err := s.file.Close(); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeSink, "failed to close output file")
	}

	s.writer = nil
	s.encoder = nil
	return nil
}

// Written returns the number of records written.
func (s *JSONLSink) Written() int64 {
	return s.written
}
