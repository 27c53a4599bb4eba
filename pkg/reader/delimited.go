package reader

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

func init() {
	Register("csv", func(opts Options) (Reader, error) {
		return NewDelimitedReader(',', opts)
	})
	Register("tsv", func(opts Options) (Reader, error) {
		return NewDelimitedReader('\t', opts)
	})
}

// DelimitedReader reads comma- or tab-separated text. Without explicit
// headers the first line is consumed as column names; with explicit
// headers every line is data, zipped positionally against the supplied
// names. Ragged rows are tolerated: extra columns get synthetic field_N
// names, missing columns are simply absent from the record.
type DelimitedReader struct {
	opts      Options
	delimiter rune
	input     io.ReadCloser
	csv       *csv.Reader
	headers   []string
	line      int
}

// NewDelimitedReader creates a delimited-text reader with the given
// default separator. Options.Delimiter, when set, overrides it.
func NewDelimitedReader(delimiter rune, opts Options) (*DelimitedReader, error) {
	if opts.Delimiter != 0 {
		delimiter = opts.Delimiter
	}
	return &DelimitedReader{
		opts:      opts,
		delimiter: delimiter,
		headers:   opts.Headers,
	}, nil
}

// Open opens the input file.
func (r *DelimitedReader) Open(ctx context.Context) error {
	input, err := openInput(r.opts.Path)
	if err != nil {
		return err
	}

	r.input = input
	r.csv = csv.NewReader(input)
	r.csv.Comma = r.delimiter
	r.csv.FieldsPerRecord = -1 // ragged rows tolerated
	return nil
}

// Read streams records from the file. The header line, when not supplied
// externally, is consumed before the first record is emitted.
func (r *DelimitedReader) Read(ctx context.Context) (*RecordStream, error) {
	if r.csv == nil {
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
			row, err := r.csv.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errorChan <- recerrors.Wrap(err, recerrors.ErrorTypeFile, "failed to read delimited row").
					WithDetail("file", r.opts.Path).
					WithDetail("line", r.line+1)
				return
			}
			r.line++

			// First line becomes the header unless headers were supplied.
			if r.headers == nil {
				r.headers = row
				continue
			}

			record := r.rowToRecord(row)

			select {
			case recordChan <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &RecordStream{Records: recordChan, Errors: errorChan}, nil
}

// rowToRecord zips a row positionally against the header names. Raw
// delimited values stay strings; coercion happens in the transform engine.
func (r *DelimitedReader) rowToRecord(row []string) *models.RawRecord {
	record := models.NewRawRecord(r.opts.Path, r.line)

	for i, value := range row {
		var fieldName string
		if i < len(r.headers) {
			fieldName = r.headers[i]
		} else {
			fieldName = "field_" + strconv.Itoa(i)
		}
		record.Data[fieldName] = value
	}

	return record
}

// Close closes the input file.
func (r *DelimitedReader) Close(ctx context.Context) error {
	if r.input != nil {
		err := r.input.Close()
		r.input = nil
		return err
	}
	return nil
}
