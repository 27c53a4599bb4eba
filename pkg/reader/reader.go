// Package reader provides format readers that turn input files into lazy
// streams of raw records.
//
// Two families are supported: delimited text (comma or tab separated, with
// optional externally supplied header names) and JSON streams (one record
// per top-level JSON value). Readers are registered by format name and
// resolved from the file extension, with gzip-compressed variants handled
// transparently.
package reader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

// RecordStream is a lazy stream of raw records with a paired error channel.
// Both channels are closed when the underlying file is exhausted.
type RecordStream struct {
	Records <-chan *models.RawRecord
	Errors  <-chan error
}

// Reader produces a finite stream of raw records from one input file.
type Reader interface {
	// Open prepares the underlying file.
	Open(ctx context.Context) error
	// Read starts streaming records. The stream is exhausted when the
	// Records channel closes.
	Read(ctx context.Context) (*RecordStream, error)
	// Close releases the underlying file.
	Close(ctx context.Context) error
}

// Options configures a reader for one input file.
type Options struct {
	// Path is the input file path.
	Path string
	// Headers supplies explicit column names for delimited formats. When
	// set, every line (including what would have been a header line) is
	// treated as data.
	Headers []string
	// Delimiter overrides the format's default field separator.
	Delimiter rune
	// BufferSize sets the channel buffer for the record stream.
	BufferSize int
}

// Factory creates a reader instance for the given options.
type Factory func(opts Options) (Reader, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers a reader factory under a format name. Registration
// normally happens from init functions of the format packages.
func Register(format string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[format] = factory
}

// New creates a reader for the given format name.
func New(format string, opts Options) (Reader, error) {
	registryMu.RLock()
	factory, ok := factories[format]
	registryMu.RUnlock()

	if !ok {
		return nil, recerrors.Newf(recerrors.ErrorTypeConfig, "no reader registered for format %q", format)
	}
	return factory(opts)
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// extensionFormats maps recognized file extensions to format names.
// "text" files default to tab separation.
var extensionFormats = map[string]string{
	".csv":    "csv",
	".tsv":    "tsv",
	".txt":    "tsv",
	".json":   "json",
	".jsonl":  "json",
	".ndjson": "json",
}

// ResolveFormat resolves an input path to a format name. An explicit
// override beats extension lookup. A trailing .gz is stripped before the
// extension is inspected. An unrecognized extension with no override
// fails with an unsupported_file error naming the file.
func ResolveFormat(path, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	name := path
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
	}

	ext := strings.ToLower(filepath.Ext(name))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}

	if ext == "" {
		return "", recerrors.Newf(recerrors.ErrorTypeUnsupportedFile,
			"cannot determine format of %q: file has no extension and no format override was given", path).
			WithDetail("file", path)
	}
	return "", recerrors.Newf(recerrors.ErrorTypeUnsupportedFile,
		"cannot determine format of %q: unrecognized extension %q and no format override was given", path, ext).
		WithDetail("file", path).
		WithDetail("extension", ext)
}

// openInput opens an input file, transparently decompressing .gz files.
// The returned closer closes both the decompressor and the file.
func openInput(path string) (io.ReadCloser, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return nil, recerrors.Wrap(err, recerrors.ErrorTypeFile, "failed to open input file").
			WithDetail("file", path)
	}

	if !strings.HasSuffix(path, ".gz") {
		return file, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, recerrors.Wrap(err, recerrors.ErrorTypeFile, "failed to open gzip stream").
			WithDetail("file", path)
	}

	return &gzipReadCloser{gz: gz, file: file}, nil
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
