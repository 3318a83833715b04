package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected logging defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Widget.BlinkIntervalDuration() != 500*time.Millisecond {
		t.Errorf("blink interval = %v, want 500ms", cfg.Widget.BlinkIntervalDuration())
	}
	if cfg.DataDir == "" {
		t.Error("data dir must default to a non-empty path")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %s, want info", cfg.LogLevel)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log_level: debug\nlog_format: json\ntheme:\n  amber: \"220\"\nwidget:\n  blink_interval: 250ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("logging = %s/%s, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Theme.Amber != "220" {
		t.Errorf("theme amber = %s, want 220", cfg.Theme.Amber)
	}
	if cfg.Theme.Green == "" {
		t.Error("unset theme fields keep defaults")
	}
	if cfg.Widget.BlinkIntervalDuration() != 250*time.Millisecond {
		t.Errorf("blink interval = %v, want 250ms", cfg.Widget.BlinkIntervalDuration())
	}
}

func TestLoadInvalidBlinkInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("widget:\n  blink_interval: banana\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unparseable blink interval is an initialization error")
	}
}

func TestBlinkIntervalFallback(t *testing.T) {
	if (WidgetConfig{}).BlinkIntervalDuration() != DefaultBlinkInterval {
		t.Error("empty interval must fall back to the default")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config file is an initialization error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PULSE_LOG_LEVEL", "error")
	t.Setenv("PULSE_DIR", "/tmp/pulse-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("log level = %s, env must win", cfg.LogLevel)
	}
	if cfg.DataDir != "/tmp/pulse-test" {
		t.Errorf("data dir = %s, env must win", cfg.DataDir)
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"WARN":    LogLevelWarn,
		" error ": LogLevelError,
		"bogus":   LogLevelInfo,
		"":        LogLevelInfo,
	}
	for raw, want := range tests {
		if got := NormalizeLogLevel(raw); got != want {
			t.Errorf("NormalizeLogLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestNormalizeLogFormat(t *testing.T) {
	if NormalizeLogFormat("JSON") != LogFormatJSON {
		t.Error("json format not recognized")
	}
	if NormalizeLogFormat("whatever") != LogFormatText {
		t.Error("unknown formats default to text")
	}
}

func TestBuildLoggerVerboseForcesDebug(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "error"

	logger := BuildLogger(cfg, true)
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("verbose must force debug level")
	}

	logger = BuildLogger(cfg, false)
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("error level must suppress info")
	}
}
