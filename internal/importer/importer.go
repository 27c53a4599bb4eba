// Package importer orchestrates an import run: it iterates input files,
// streams raw records through the translation engine, validates the two
// required output fields, and forwards valid records to the sink.
//
// The record path is fully sequential: files in argument order, records
// in input order. The asymmetric error policy lives here: a record that
// fails validation is logged and skipped, because bad records are routine
// input noise; a coercion or expression failure aborts the run, because a
// broken transform affects every record.
package importer

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/recast-io/recast/pkg/config"
	"github.com/recast-io/recast/pkg/metrics"
	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/reader"
	"github.com/recast-io/recast/pkg/recerrors"
	"github.com/recast-io/recast/pkg/sink"
	"github.com/recast-io/recast/pkg/transform"
)

// Importer drives one import run over a set of input files.
type Importer struct {
	engine *transform.Engine
	sink   sink.Sink
	cfg    *config.BaseConfig
	logger *zap.Logger

	delimiter rune
}

// Summary reports what an import run did.
type Summary struct {
	Files     int
	Read      int64
	Forwarded int64
	Skipped   int64
	Duration  time.Duration
}

// New creates an importer. The engine and sink are owned by the caller;
// the importer only drives them.
func New(engine *transform.Engine, s sink.Sink, cfg *config.BaseConfig, logger *zap.Logger) *Importer {
	var delimiter rune
	if cfg.Import.Delimiter != "" {
		delimiter = rune(cfg.Import.Delimiter[0])
	}

	return &Importer{
		engine:    engine,
		sink:      s,
		cfg:       cfg,
		logger:    logger,
		delimiter: delimiter,
	}
}

// Run processes the given files in order and returns a run summary.
// Validation failures are logged and skipped; every other error aborts
// the run immediately.
func (imp *Importer) Run(ctx context.Context, files []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	for _, file := range files {
		if err := imp.importFile(ctx, file, summary); err != nil {
			return nil, err
		}
		summary.Files++
	}

	summary.Duration = time.Since(start)

	imp.logger.Info("import completed",
		zap.Int("files", summary.Files),
		zap.Int64("records_read", summary.Read),
		zap.Int64("records_forwarded", summary.Forwarded),
		zap.Int64("records_skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func (imp *Importer) importFile(ctx context.Context, file string, summary *Summary) error {
	format, err := reader.ResolveFormat(file, imp.cfg.Import.Format)
	if err != nil {
		return err
	}

	r, err := reader.New(format, reader.Options{
		Path:      file,
		Headers:   imp.cfg.Import.Headers,
		Delimiter: imp.delimiter,
	})
	if err != nil {
		return err
	}

	if err := r.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(ctx); closeErr != nil {
			imp.logger.Warn("failed to close reader", zap.String("file", file), zap.Error(closeErr))
		}
	}()

	stream, err := r.Read(ctx)
	if err != nil {
		return err
	}

	imp.logger.Info("importing file", zap.String("file", file), zap.String("format", format))

	for {
		select {
		case record, ok := <-stream.Records:
			if !ok {
				// Producer closes the error channel after any final error.
				if err, ok := <-stream.Errors; ok && err != nil {
					return err
				}
				return nil
			}
			if err := imp.processRecord(ctx, format, record, summary); err != nil {
				return err
			}

		case err := <-stream.Errors:
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return recerrors.Wrap(ctx.Err(), recerrors.ErrorTypeInternal, "import cancelled")
		}
	}
}

func (imp *Importer) processRecord(ctx context.Context, format string, record *models.RawRecord, summary *Summary) error {
	summary.Read++
	metrics.RecordsRead.WithLabelValues(format).Inc()

	start := time.Now()
	out, err := imp.engine.Translate(record)
	metrics.TranslateDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Coercion and expression failures indicate a broken transform,
		// not bad data; they are fatal for the run.
		return err
	}
	metrics.RecordsTranslated.Inc()

	if err := imp.validate(out); err != nil {
		summary.Skipped++
		metrics.RecordsSkipped.Inc()
		imp.logger.Warn("skipping invalid record",
			zap.String("file", record.Meta.File),
			zap.Int("line", record.Meta.Line),
			zap.Error(err))
		return nil
	}

	if err := imp.sink.Write(ctx, out); err != nil {
		return err
	}
	summary.Forwarded++
	metrics.RecordsForwarded.WithLabelValues(imp.cfg.Sink.Type).Inc()
	return nil
}

// validate checks the two required output fields: a positive-valued
// identifier and a non-absent timestamp.
func (imp *Importer) validate(out models.OutputRecord) error {
	id, ok := out[imp.cfg.Import.IDField]
	if !ok || !isPositive(id) {
		return recerrors.Newf(recerrors.ErrorTypeValidation,
			"record has no positive %q field", imp.cfg.Import.IDField).
			WithDetail("field", imp.cfg.Import.IDField).
			WithDetail("value", id)
	}

	ts, ok := out[imp.cfg.Import.TimeField]
	if !ok || isAbsent(ts) {
		return recerrors.Newf(recerrors.ErrorTypeValidation,
			"record has no %q field", imp.cfg.Import.TimeField).
			WithDetail("field", imp.cfg.Import.TimeField)
	}

	return nil
}

func isPositive(v interface{}) bool {
	switch tv := v.(type) {
	case int64:
		return tv > 0
	case int:
		return tv > 0
	case float64:
		return tv > 0
	case string:
		f, err := strconv.ParseFloat(tv, 64)
		return err == nil && f > 0
	}
	return false
}

func isAbsent(v interface{}) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return tv == ""
	case time.Time:
		return tv.IsZero()
	}
	return false
}
