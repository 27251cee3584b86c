package obslog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", zap.Int("slot", 7))
	logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["level"] != "debug" || entry["slot"] != float64(7) {
		t.Errorf("entry = %v", entry)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	logger.Sync()
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, " | WARN | ") {
		t.Errorf("legacy format separator missing: %q", out)
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "betza.log")
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", File: path, Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("to both")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Errorf("file %q, console %q", data, buf.String())
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	old := L()
	t.Cleanup(func() { globalLogger = old })

	var buf bytes.Buffer
	if err := Init(Options{Console: &buf}); err != nil {
		t.Fatal(err)
	}
	L().Info("global")
	L().Sync()
	if !strings.Contains(buf.String(), "global") {
		t.Errorf("output = %q", buf.String())
	}
}
