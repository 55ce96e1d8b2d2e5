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
//  2. file (YAML) if QUICKDRAW_CONFIG is set
//  3. env (prefix QUICKDRAW_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("QUICKDRAW_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: QUICKDRAW_ADDR, QUICKDRAW_TOKEN_TTL, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("QUICKDRAW_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "quickdraw_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	case c.SweepInterval <= 0:
		return fmt.Errorf("%w: sweep_interval must be positive", ErrInvalidConfig)
	case c.RequiredRuns <= 0:
		return fmt.Errorf("%w: required_runs must be positive", ErrInvalidConfig)
	case c.BoardSize <= 0:
		return fmt.Errorf("%w: board_size must be positive", ErrInvalidConfig)
	case c.MaxBoardLimit < c.BoardSize:
		return fmt.Errorf("%w: max_board_limit must be at least board_size", ErrInvalidConfig)
	}
	return nil
}
