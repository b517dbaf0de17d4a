package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if WATCHRANK_CONFIG is set
//  3. env (prefix WATCHRANK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("WATCHRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: WATCHRANK_ADDR, WATCHRANK_SHARD_COUNT, ...
	// Map env keys like WATCHRANK_SHARD_COUNT -> shard_count (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("WATCHRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "watchrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for postgres storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, cfg.Storage)
	}
	if cfg.ShardCount < 1 {
		return fmt.Errorf("%w: shard_count must be >= 1", ErrInvalidConfig)
	}
	if cfg.MaxPageSize < 1 || cfg.DefaultPageSize < 1 {
		return fmt.Errorf("%w: page sizes must be >= 1", ErrInvalidConfig)
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		return fmt.Errorf("%w: default_page_size exceeds max_page_size", ErrInvalidConfig)
	}
	return nil
}
