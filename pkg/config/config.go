// Package config provides the unified configuration for recast.
// A single BaseConfig structure drives the CLI, the importer, the format
// readers, and the sink, organized into logical sections:
//
//   - Import: transform selection and input interpretation
//   - Sink: where validated event records are forwarded
//   - Logging: structured log output
//   - Metrics: optional Prometheus exposition
//
// Example usage:
//
//	cfg := config.NewBaseConfig()
//	cfg.Import.Transform = "orders"
//	cfg.Sink.Type = "jsonl"
//	cfg.Sink.Path = "out.ndjson"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"time"

	"github.com/recast-io/recast/pkg/recerrors"
)

// BaseConfig is the single configuration structure used across recast.
type BaseConfig struct {
	// Import controls transform selection and input interpretation
	Import ImportConfig `yaml:"import" json:"import"`

	// Sink controls where translated records are forwarded
	Sink SinkConfig `yaml:"sink" json:"sink"`

	// Logging controls structured log output
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics controls Prometheus exposition
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ImportConfig contains transform and input settings.
type ImportConfig struct {
	// Transform is a transform name or a path to a transform file
	Transform string `yaml:"transform" json:"transform"`
	// TransformDir is the directory searched for named transforms
	TransformDir string `yaml:"transform_dir" json:"transform_dir"`
	// Format overrides extension-based format detection (csv, tsv, json)
	Format string `yaml:"format" json:"format"`
	// Headers supplies explicit column names for delimited input.
	// When set, every line of the file is treated as data.
	Headers []string `yaml:"headers" json:"headers"`
	// Delimiter overrides the format's field separator (single rune)
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// IDField names the output field validated as a positive identifier
	IDField string `yaml:"id_field" json:"id_field"`
	// TimeField names the output field validated as a timestamp
	TimeField string `yaml:"time_field" json:"time_field"`
}

// SinkConfig contains event-store forwarding settings.
type SinkConfig struct {
	// Type selects the sink implementation (jsonl, http, discard)
	Type string `yaml:"type" json:"type"`
	// Path is the output file for the jsonl sink
	Path string `yaml:"path" json:"path"`
	// URL is the event-store endpoint for the http sink
	URL string `yaml:"url" json:"url"`
	// BatchSize controls records per http request
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// Gzip enables gzip compression of jsonl output
	Gzip bool `yaml:"gzip" json:"gzip"`
	// RequestTimeout bounds a single http request
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	// RetryAttempts sets maximum retries for a failed http batch
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the initial delay between retries
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Encoding    string `yaml:"encoding" json:"encoding"`
	Development bool   `yaml:"development" json:"development"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Listen  string `yaml:"listen" json:"listen"`
}

// NewBaseConfig returns a configuration populated with defaults.
func NewBaseConfig() *BaseConfig {
	return &BaseConfig{
		Import: ImportConfig{
			TransformDir: "./transforms",
			IDField:      "id",
			TimeField:    "timestamp",
		},
		Sink: SinkConfig{
			Type:           "jsonl",
			BatchSize:      500,
			RequestTimeout: 30 * time.Second,
			RetryAttempts:  3,
			RetryDelay:     500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Listen: ":9090",
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c *BaseConfig) Validate() error {
	if c.Import.Transform == "" {
		return recerrors.New(recerrors.ErrorTypeConfig, "import.transform is required")
	}
	if len(c.Import.Delimiter) > 1 {
		return recerrors.Newf(recerrors.ErrorTypeConfig,
			"import.delimiter must be a single character, got %q", c.Import.Delimiter)
	}
	if c.Import.IDField == "" || c.Import.TimeField == "" {
		return recerrors.New(recerrors.ErrorTypeConfig, "id_field and time_field must be set")
	}

	switch c.Sink.Type {
	case "jsonl":
		if c.Sink.Path == "" {
			return recerrors.New(recerrors.ErrorTypeConfig, "sink.path is required for the jsonl sink")
		}
	case "http":
		if c.Sink.URL == "" {
			return recerrors.New(recerrors.ErrorTypeConfig, "sink.url is required for the http sink")
		}
		if c.Sink.BatchSize <= 0 {
			return recerrors.New(recerrors.ErrorTypeConfig, "sink.batch_size must be positive")
		}
	case "discard":
	default:
		return recerrors.Newf(recerrors.ErrorTypeConfig, "unknown sink type %q", c.Sink.Type)
	}

	return nil
}
