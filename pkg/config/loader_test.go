package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recast.yaml")
	content := `
import:
  transform: orders
  format: csv
  id_field: order_id
sink:
  type: http
  url: http://events.local/ingest
  batch_size: 100
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewBaseConfig()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Import.Transform != "orders" || cfg.Import.IDField != "order_id" {
		t.Errorf("unexpected import config: %+v", cfg.Import)
	}
	if cfg.Sink.URL != "http://events.local/ingest" || cfg.Sink.BatchSize != 100 {
		t.Errorf("unexpected sink config: %+v", cfg.Sink)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level: %s", cfg.Logging.Level)
	}
	// Unset sections keep their defaults.
	if cfg.Import.TimeField != "timestamp" {
		t.Errorf("default time_field lost: %s", cfg.Import.TimeField)
	}
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("RECAST_TEST_URL", "http://store.example/v1")

	dir := t.TempDir()
	path := filepath.Join(dir, "recast.yaml")
	content := "sink:\n  type: http\n  url: ${RECAST_TEST_URL}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewBaseConfig()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Sink.URL != "http://store.example/v1" {
		t.Errorf("env substitution failed: %s", cfg.Sink.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := NewBaseConfig()
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), cfg); err == nil {
		t.Error("expected error for missing config file")
	}
}
