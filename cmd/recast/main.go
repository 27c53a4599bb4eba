package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recast-io/recast/internal/importer"
	"github.com/recast-io/recast/pkg/config"
	"github.com/recast-io/recast/pkg/logger"
	"github.com/recast-io/recast/pkg/metrics"
	"github.com/recast-io/recast/pkg/reader"
	"github.com/recast-io/recast/pkg/sink"
	"github.com/recast-io/recast/pkg/transform"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "recast",
		Short: "Recast - flat-file to event-record importer",
		Long: `Recast converts records from delimited text or JSON stream files into
normalized event records and forwards them to an event store. The
conversion is driven by a declarative transform specification.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Recast v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available formats, sinks, and script modules",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Input formats:")
			for _, format := range reader.Formats() {
				fmt.Printf("  - %s\n", format)
			}
			fmt.Println("\nSinks:")
			for _, name := range sink.Types() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println("\nScript modules:")
			for _, name := range transform.Modules() {
				fmt.Printf("  - %s\n", name)
			}
		},
	})

	root.AddCommand(newImportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	cfg := config.NewBaseConfig()
	var configFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import files into the event store",
		Long: `Import one or more input files. Each file is resolved to a format by
extension (or --format), translated record by record with the given
transform, validated, and forwarded to the configured sink.

Example:
  recast import --transform orders --sink jsonl --out events.ndjson data/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				fileCfg := config.NewBaseConfig()
				if err := config.Load(configFile, fileCfg); err != nil {
					return err
				}
				// Flags explicitly set on the command line win over the file.
				merged := fileCfg
				applyFlagOverrides(cmd, merged, cfg)
				cfg = merged
			}
			return runImport(cmd.Context(), cfg, args, timeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Import.Transform, "transform", "t", "", "Transform name or path (required)")
	flags.StringVar(&cfg.Import.TransformDir, "transform-dir", cfg.Import.TransformDir, "Directory searched for named transforms")
	flags.StringVar(&cfg.Import.Format, "format", "", "Input format override (csv, tsv, json)")
	flags.StringSliceVar(&cfg.Import.Headers, "headers", nil, "Explicit column names for delimited input; every line is then data")
	flags.StringVar(&cfg.Import.Delimiter, "delimiter", "", "Field separator override for delimited input")
	flags.StringVar(&cfg.Import.IDField, "id-field", cfg.Import.IDField, "Output field validated as a positive identifier")
	flags.StringVar(&cfg.Import.TimeField, "time-field", cfg.Import.TimeField, "Output field validated as a timestamp")
	flags.StringVar(&cfg.Sink.Type, "sink", cfg.Sink.Type, "Sink type (jsonl, http, discard)")
	flags.StringVarP(&cfg.Sink.Path, "out", "o", "", "Output path for the jsonl sink")
	flags.StringVar(&cfg.Sink.URL, "url", "", "Event store URL for the http sink")
	flags.IntVar(&cfg.Sink.BatchSize, "batch-size", cfg.Sink.BatchSize, "Records per http batch")
	flags.BoolVar(&cfg.Sink.Gzip, "gzip", false, "Gzip-compress jsonl output")
	flags.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.Metrics.Enabled, "enable-metrics", false, "Expose Prometheus metrics while the run lasts")
	flags.StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	flags.DurationVar(&timeout, "timeout", 30*time.Minute, "Run timeout")
	_ = cmd.MarkFlagRequired("transform")

	return cmd
}

// applyFlagOverrides copies values from flag-backed cfg onto the merged
// config for every flag the user set explicitly.
func applyFlagOverrides(cmd *cobra.Command, merged, flagCfg *config.BaseConfig) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if set("transform") {
		merged.Import.Transform = flagCfg.Import.Transform
	}
	if set("transform-dir") {
		merged.Import.TransformDir = flagCfg.Import.TransformDir
	}
	if set("format") {
		merged.Import.Format = flagCfg.Import.Format
	}
	if set("headers") {
		merged.Import.Headers = flagCfg.Import.Headers
	}
	if set("delimiter") {
		merged.Import.Delimiter = flagCfg.Import.Delimiter
	}
	if set("id-field") {
		merged.Import.IDField = flagCfg.Import.IDField
	}
	if set("time-field") {
		merged.Import.TimeField = flagCfg.Import.TimeField
	}
	if set("sink") {
		merged.Sink.Type = flagCfg.Sink.Type
	}
	if set("out") {
		merged.Sink.Path = flagCfg.Sink.Path
	}
	if set("url") {
		merged.Sink.URL = flagCfg.Sink.URL
	}
	if set("batch-size") {
		merged.Sink.BatchSize = flagCfg.Sink.BatchSize
	}
	if set("gzip") {
		merged.Sink.Gzip = flagCfg.Sink.Gzip
	}
	if set("log-level") {
		merged.Logging.Level = flagCfg.Logging.Level
	}
	if set("enable-metrics") {
		merged.Metrics.Enabled = flagCfg.Metrics.Enabled
	}
}

func runImport(ctx context.Context, cfg *config.BaseConfig, files []string, timeout time.Duration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	}); err != nil {
		return err
	}
	log := logger.With(
		zap.String("component", "recast-cli"),
		zap.String("transform", cfg.Import.Transform),
		zap.String("sink", cfg.Sink.Type),
	)
	defer func() { _ = logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if cfg.Metrics.Enabled {
		srv := metrics.Serve(cfg.Metrics.Listen)
		defer func() { _ = srv.Close() }()
		log.Info("metrics enabled", zap.String("listen", cfg.Metrics.Listen))
	}

	// Compile the transform before touching any input; a malformed spec
	// must fail before the first record is processed.
	specText, err := transform.Resolve(cfg.Import.Transform, cfg.Import.TransformDir)
	if err != nil {
		return err
	}
	spec, err := transform.Compile(specText)
	if err != nil {
		return err
	}
	engine, err := transform.NewEngine(spec)
	if err != nil {
		return err
	}

	eventSink, err := sink.New(cfg.Sink)
	if err != nil {
		return err
	}
	if err := eventSink.Open(ctx); err != nil {
		return err
	}

	log.Info("starting import",
		zap.Int("files", len(files)),
		zap.Int("rules", len(spec.Rules)),
		zap.Strings("require", spec.Require))

	imp := importer.New(engine, eventSink, cfg, log)
	summary, runErr := imp.Run(ctx, files)

	if closeErr := eventSink.Close(ctx); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("imported %d file(s): %d read, %d forwarded, %d skipped in %s\n",
		summary.Files, summary.Read, summary.Forwarded, summary.Skipped,
		summary.Duration.Round(time.Millisecond))
	return nil
}
