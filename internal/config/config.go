package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultSearchTimeout = 5 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxFiles   = 3
)

// PositionCache configures persistence of item position maps.
type PositionCache struct {
	// Enabled persists position maps across sessions.
	Enabled bool `yaml:"enabled"`
	// Dir overrides the store location (default: $XDG_CACHE_HOME/uifind/positions).
	Dir string `yaml:"dir,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// File is the log file path; empty logs to stderr.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	// SearchTimeout is the default lookup timeout when a caller gives none.
	SearchTimeout time.Duration `yaml:"search_timeout"`
	// RetryInterval is the pause between structural search attempts.
	RetryInterval time.Duration `yaml:"retry_interval"`
	Display       string        `yaml:"display,omitempty"`
	XAuthority    string        `yaml:"xauthority,omitempty"`
	PositionCache PositionCache `yaml:"position_cache"`
	LogLevel      string        `yaml:"log_level"`
	Logging       LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		SearchTimeout: DefaultSearchTimeout,
		RetryInterval: DefaultRetryInterval,
		PositionCache: PositionCache{Enabled: true},
		LogLevel:      DefaultLogLevel,
		Logging: LoggingConfig{
			MaxSizeMB: DefaultLogMaxSizeMB,
			MaxFiles:  DefaultLogMaxFiles,
		},
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.SearchTimeout <= 0 {
		return &ValidationError{Path: "search_timeout", Err: fmt.Errorf("search_timeout must be > 0")}
	}
	if c.RetryInterval <= 0 {
		return &ValidationError{Path: "retry_interval", Err: fmt.Errorf("retry_interval must be > 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string
	if c.RetryInterval > c.SearchTimeout {
		warnings = append(warnings, fmt.Sprintf("retry_interval %v is longer than search_timeout %v; lookups will search once", c.RetryInterval, c.SearchTimeout))
	}
	if c.PositionCache.Dir != "" && !c.PositionCache.Enabled {
		warnings = append(warnings, "position_cache.dir is set but position_cache.enabled is false; the directory is unused")
	}
	if strings.TrimSpace(c.Logging.File) == "" && (c.Logging.MaxFiles != DefaultLogMaxFiles || c.Logging.MaxSizeMB != DefaultLogMaxSizeMB) {
		warnings = append(warnings, "logging rotation settings only apply when logging.file is set")
	}
	return warnings
}

// ApplyEnvironment exports display settings for X11 clients started by this
// process.
func (c *Config) ApplyEnvironment() {
	if c == nil {
		return
	}
	if c.Display != "" {
		os.Setenv("DISPLAY", c.Display)
	}
	if c.XAuthority != "" {
		os.Setenv("XAUTHORITY", c.XAuthority)
	}
}
