package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig overlays raw onto the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.SearchTimeout != nil {
		cfg.SearchTimeout = *raw.SearchTimeout
	}
	if raw.RetryInterval != nil {
		cfg.RetryInterval = *raw.RetryInterval
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.PositionCache != nil {
		if raw.PositionCache.Enabled != nil {
			cfg.PositionCache.Enabled = *raw.PositionCache.Enabled
		}
		if raw.PositionCache.Dir != nil {
			cfg.PositionCache.Dir = expandHome(*raw.PositionCache.Dir)
		}
	}
	if raw.LogLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if level == "warn" {
			level = "warning"
		}
		cfg.LogLevel = level
	}
	if raw.Logging != nil {
		if raw.Logging.File != nil {
			cfg.Logging.File = expandHome(*raw.Logging.File)
		}
		if raw.Logging.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *raw.Logging.MaxSizeMB
		}
		if raw.Logging.MaxFiles != nil {
			cfg.Logging.MaxFiles = *raw.Logging.MaxFiles
		}
	}

	return cfg
}
