// Package recast imports flat-file records into an event store.
//
// Recast reads delimited text (CSV, TSV) and JSON stream files, converts
// each record through a declarative transform specification, validates
// the result, and forwards it to a configured sink. Input and output
// schemas are defined at runtime by the transform, not compiled in.
//
// # Architecture
//
// The record path is a straight pipeline with three stages:
//
// 1. Format readers (pkg/reader) resolve a file to a format by extension,
// transparently decompress gzip, and produce a lazy stream of raw
// records: flat maps of dynamically typed values.
//
// 2. The transform engine (pkg/transform) compiles a YAML transform into
// an ordered rule list and applies it to each record. A rule either
// extracts an input field with an optional type coercion, or runs a
// scripted expression with access to the raw input and the in-progress
// output. Nested output paths materialize on demand.
//
// 3. Sinks (pkg/sink) accept validated records in order: a JSONL file
// (optionally gzipped), an HTTP event-store endpoint with batching and
// retries, or a counting discard sink for dry runs.
//
// The importer (internal/importer) drives the pipeline and applies the
// asymmetric error policy: records failing required-field validation are
// logged and skipped; every other failure aborts the run.
//
// # Quick Start
//
// Translate a CSV file into an NDJSON event file:
//
//	specText, _ := transform.Resolve("orders", "./transforms")
//	spec, _ := transform.Compile(specText)
//	engine, _ := transform.NewEngine(spec)
//
//	cfg := config.NewBaseConfig()
//	cfg.Import.Transform = "orders"
//	cfg.Sink.Path = "events.ndjson"
//
//	s, _ := sink.New(cfg.Sink)
//	_ = s.Open(ctx)
//	imp := importer.New(engine, s, cfg, logger.Get())
//	summary, err := imp.Run(ctx, []string{"orders.csv"})
//
// Or from the command line:
//
//	recast import --transform orders --out events.ndjson orders.csv
//
// # Key Packages
//
//	pkg/transform    - Transform compiler and translation engine
//	pkg/reader       - Delimited and JSON stream format readers
//	pkg/sink         - JSONL, HTTP, and discard sinks
//	pkg/config       - Unified configuration with YAML loading
//	pkg/recerrors    - Categorized errors driving the propagation policy
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus metrics for import runs
package recast
