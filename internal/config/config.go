package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/sdd-engine/sdd/internal/logging"
)

// Config holds all runtime configuration for an sdd session.
// Values are populated from .sdd.yaml, SDD_* env vars, and CLI flags.
type Config struct {
	Root          string `mapstructure:"root"`
	DebounceMS    int    `mapstructure:"debounce_ms"`
	FocusFile     string `mapstructure:"focus_file"`
	HistoryDB     string `mapstructure:"history_db"`
	TelemetryFile string `mapstructure:"telemetry_file"`
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	Editor        string `mapstructure:"editor"`
}

// SetDefaults registers built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("root", ".")
	viper.SetDefault("debounce_ms", 300)
	viper.SetDefault("focus_file", ".sdd/focus.toml")
	viper.SetDefault("history_db", ".sdd/history.db")
	viper.SetDefault("telemetry_file", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "")
	viper.SetDefault("editor", "")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be >= 0, got %d", c.DebounceMS)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	return nil
}

// Debounce returns the watcher debounce as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Path resolves a configured path against the project root. Absolute paths
// and empty strings are returned unchanged.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// EditorCommand returns the editor to open artifacts with: the configured
// editor, then $VISUAL, then $EDITOR, then vi.
func (c Config) EditorCommand() string {
	for _, e := range []string{c.Editor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if e != "" {
			return e
		}
	}
	return "vi"
}
