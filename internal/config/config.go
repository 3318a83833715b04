// Package config loads widget configuration: YAML file, .env overlay,
// then PULSE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pulse/internal/paths"
)

// Theme holds the gauge colors as terminal color strings (ANSI index or
// hex).
type Theme struct {
	Amber string `yaml:"amber"`
	Green string `yaml:"green"`
	Red   string `yaml:"red"`
	Dim   string `yaml:"dim"`
	Bezel string `yaml:"bezel"`
}

// DefaultBlinkInterval drives the indicator lamp animation.
const DefaultBlinkInterval = 500 * time.Millisecond

// WidgetConfig carries presentation knobs. The watcher debounce window
// is deliberately not here; it is fixed. Durations are stored as
// strings ("500ms") and validated during Load.
type WidgetConfig struct {
	BlinkInterval string `yaml:"blink_interval"`
}

// BlinkIntervalDuration returns the parsed blink interval, falling
// back to the default for empty or invalid values.
func (w WidgetConfig) BlinkIntervalDuration() time.Duration {
	d, err := time.ParseDuration(w.BlinkInterval)
	if err != nil || d <= 0 {
		return DefaultBlinkInterval
	}
	return d
}

// Config is the full widget configuration.
type Config struct {
	DataDir   string       `yaml:"data_dir"`
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	Theme     Theme        `yaml:"theme"`
	Widget    WidgetConfig `yaml:"widget"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:   paths.Dir(),
		LogLevel:  string(LogLevelInfo),
		LogFormat: string(LogFormatText),
		Theme: Theme{
			Amber: "214",
			Green: "40",
			Red:   "196",
			Dim:   "238",
			Bezel: "244",
		},
		Widget: WidgetConfig{
			BlinkInterval: DefaultBlinkInterval.String(),
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (a missing file is fine), then .env/.env.local, then PULSE_* env
// vars. Env always wins over file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err != nil && os.IsNotExist(err):
			// no config file, defaults apply
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	loadEnvFile()
	applyEnvOverrides(cfg)

	cfg.LogLevel = string(NormalizeLogLevel(cfg.LogLevel))
	cfg.LogFormat = string(NormalizeLogFormat(cfg.LogFormat))
	if cfg.Widget.BlinkInterval != "" {
		if _, err := time.ParseDuration(cfg.Widget.BlinkInterval); err != nil {
			return nil, fmt.Errorf("invalid widget.blink_interval %q: %w", cfg.Widget.BlinkInterval, err)
		}
	}
	if cfg.DataDir == "" {
		cfg.DataDir = paths.Dir()
	}
	return cfg, nil
}

// loadEnvFile loads .env then .env.local, first hit wins. Existing
// process environment is never overwritten (godotenv.Load semantics).
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			return
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(paths.EnvDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PULSE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
