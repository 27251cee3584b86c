// Package config holds the application settings: defaults, an optional YAML
// file, then whatever the command line overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/walterschell/betza-board/backend"
	"github.com/walterschell/betza-board/board"
	"github.com/walterschell/betza-board/obslog"
)

var ErrInvalid = errors.New("invalid configuration")

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	Listen string `yaml:"listen"`
	// BackendURL is the collaborator base URL. Empty runs the reference
	// backend in-process under /backend.
	BackendURL      string        `yaml:"backend_url"`
	IndexConvention string        `yaml:"index_convention"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Orientation     string        `yaml:"orientation"`
	StartFEN        string        `yaml:"start_fen"`
	Log             LogConfig     `yaml:"log"`
}

func Default() AppConfig {
	return AppConfig{
		Listen:          ":8080",
		IndexConvention: "backend",
		RequestTimeout:  10 * time.Second,
		Orientation:     "white",
		Log: LogConfig{
			Level:  "info",
			Format: "legacy",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path yields the defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("%w: listen is empty", ErrInvalid)
	}
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: backend_url %q is not an http(s) URL", ErrInvalid, c.BackendURL)
		}
	}
	if _, err := backend.ParseIndexConvention(c.IndexConvention); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive, got %s", ErrInvalid, c.RequestTimeout)
	}
	if _, err := board.ParseOrientation(c.Orientation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.StartFEN != "" {
		if _, err := board.ParsePosition(c.StartFEN); err != nil {
			return fmt.Errorf("%w: start_fen: %w", ErrInvalid, err)
		}
	}
	if !obslog.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if !obslog.ValidFormat(c.Log.Format) {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// LogOptions converts the log section for obslog.Init.
func (c AppConfig) LogOptions() obslog.Options {
	return obslog.Options{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}
