package config

import (
	"fmt"
	"io"
)

// Paths lists every explainable YAML path in print order.
var Paths = []string{
	"search_timeout",
	"retry_interval",
	"display",
	"xauthority",
	"position_cache.enabled",
	"position_cache.dir",
	"log_level",
	"logging.file",
	"logging.max_size_mb",
	"logging.max_files",
}

// Explain returns the effective value at the given YAML path and its source.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "search_timeout":
		return cfg.SearchTimeout, nil
	case "retry_interval":
		return cfg.RetryInterval, nil
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	case "position_cache.enabled":
		return cfg.PositionCache.Enabled, nil
	case "position_cache.dir":
		return cfg.PositionCache.Dir, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "logging.file":
		return cfg.Logging.File, nil
	case "logging.max_size_mb":
		return cfg.Logging.MaxSizeMB, nil
	case "logging.max_files":
		return cfg.Logging.MaxFiles, nil
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}

// Print writes every effective value with its source, one per line.
func Print(w io.Writer, res *LoadResult) error {
	for _, path := range Paths {
		value, src, err := Explain(res, path)
		if err != nil {
			return err
		}
		if s, ok := value.(string); ok && s == "" {
			value = `""`
		}
		if _, err := fmt.Fprintf(w, "%s: %v\t# %s\n", path, value, src); err != nil {
			return err
		}
	}
	return nil
}
