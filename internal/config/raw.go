package config

import "time"

type RawPositionCache struct {
	Enabled *bool   `yaml:"enabled"`
	Dir     *string `yaml:"dir"`
}

type RawLogging struct {
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors the YAML file. Nil fields keep their defaults.
type RawConfig struct {
	SearchTimeout *time.Duration    `yaml:"search_timeout"`
	RetryInterval *time.Duration    `yaml:"retry_interval"`
	Display       *string           `yaml:"display"`
	XAuthority    *string           `yaml:"xauthority"`
	PositionCache *RawPositionCache `yaml:"position_cache"`
	LogLevel      *string           `yaml:"log_level"`
	Logging       *RawLogging       `yaml:"logging"`
}
