package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// CtxPaths are the configuration files or directories to load, later
	// paths taking precedence.
	CtxPaths []string
	// Format selects the configuration loader: "hcl" or "yaml".
	Format string

	LogFormat string
	LogLevel  string
	// CacheSize bounds the shared graph cache. 0 uses the default.
	CacheSize int
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.CtxPaths) == 0 {
		return nil, errors.New("at least one ctx path is required")
	}
	if cfg.Format != "hcl" && cfg.Format != "yaml" {
		return nil, errors.New(`format must be "hcl" or "yaml"`)
	}
	return &cfg, nil
}
