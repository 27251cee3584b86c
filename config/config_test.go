package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("request_timeout = %s", cfg.RequestTimeout)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v", cfg)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "betza.yaml")
	data := `
listen: "127.0.0.1:9000"
backend_url: "http://localhost:5000"
index_convention: display
request_timeout: 2500ms
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" || cfg.BackendURL != "http://localhost:5000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.IndexConvention != "display" || cfg.RequestTimeout != 2500*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "legacy" {
		t.Errorf("log = %+v, want debug level and the default format", cfg.Log)
	}
	if cfg.Orientation != "white" {
		t.Errorf("unset keys keep defaults, orientation = %q", cfg.Orientation)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("listen: [unterminated"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("bad yaml should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AppConfig)
	}{
		{"empty listen", func(c *AppConfig) { c.Listen = "" }},
		{"relative backend url", func(c *AppConfig) { c.BackendURL = "localhost:5000" }},
		{"ftp backend url", func(c *AppConfig) { c.BackendURL = "ftp://host/" }},
		{"index convention", func(c *AppConfig) { c.IndexConvention = "slots" }},
		{"zero timeout", func(c *AppConfig) { c.RequestTimeout = 0 }},
		{"orientation", func(c *AppConfig) { c.Orientation = "sideways" }},
		{"start fen", func(c *AppConfig) { c.StartFEN = "8/8/8 w - - 0 1" }},
		{"log level", func(c *AppConfig) { c.Log.Level = "loud" }},
		{"log format", func(c *AppConfig) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate = %v, want ErrInvalid", err)
			}
		})
	}
}
