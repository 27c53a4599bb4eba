package reader

import (
	"bufio"
	"context"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

func init() {
	Register("json", func(opts Options) (Reader, error) {
		return NewJSONStreamReader(opts)
	})
}

// JSONStreamReader reads a sequence of JSON values from a file, emitting
// one record per top-level value without buffering the whole input. A
// top-level array is unrolled into one record per element, so both JSONL
// and array-of-objects files work.
type JSONStreamReader struct {
	opts    Options
	input   io.ReadCloser
	decoder *gojson.Decoder
	count   int
}

// NewJSONStreamReader creates a JSON stream reader.
func NewJSONStreamReader(opts Options) (*JSONStreamReader, error) {
	return &JSONStreamReader{opts: opts}, nil
}

// Open opens the input file.
func (r *JSONStreamReader) Open(ctx context.Context) error {
	input, err := openInput(r.opts.Path)
	if err != nil {
		return err
	}

	r.input = input
	r.decoder = gojson.NewDecoder(bufio.NewReaderSize(input, 64*1024))
	return nil
}

// Read streams records from the file, one per top-level JSON value.
func (r *JSONStreamReader) Read(ctx context.Context) (*RecordStream, error) {
	if r.decoder == nil {
		return nil, recerrors.New(recerrors.ErrorTypeInternal, "reader not opened")
	}

	bufferSize := r.opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = 64
	}

	recordChan := make(chan *models.RawRecord, bufferSize)
	errorChan := make(chan error, 1)

	go func() {
		defer close(recordChan)
		defer close(errorChan)

		for {
			var value interface{}
			if err := r.decoder.Decode(&value); err != nil {
				if err == io.EOF {
					return
				}
				errorChan <- recerrors.Wrap(err, recerrors.ErrorTypeFile, "failed to decode JSON value").
					WithDetail("file", r.opts.Path).
					WithDetail("value_number", r.count+1)
				return
			}

			switch tv := value.(type) {
			case []interface{}:
				for _, element := range tv {
					if !r.emit(ctx, element, recordChan) {
						return
					}
				}
			default:
				if !r.emit(ctx, value, recordChan) {
					return
				}
			}
		}
	}()

	return &RecordStream{Records: recordChan, Errors: errorChan}, nil
}

// emit converts one decoded value into a record and sends it. Non-object
// values are wrapped under a "value" key so scalar streams still translate.
func (r *JSONStreamReader) emit(ctx context.Context, value interface{}, out chan<- *models.RawRecord) bool {
	r.count++
	record := models.NewRawRecord(r.opts.Path, r.count)

	if obj, ok := value.(map[string]interface{}); ok {
		record.Data = obj
	} else {
		record.Data["value"] = value
	}

	select {
	case out <- record:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close closes the input file.
func (r *JSONStreamReader) Close(ctx context.Context) error {
	if r.input != nil {
		err := r.input.Close()
		r.input = nil
		return err
	}
	return nil
}
