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

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PARKSTATS_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PARKSTATS_CONFIG is set
//  3. env (prefix PARKSTATS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like PARKSTATS_RESULTS_FILE -> results_file (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that c can drive the service.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ResultsFile == "":
		return fmt.Errorf("%w: results_file must not be empty", ErrInvalidConfig)
	case c.EventDistanceKm <= 0:
		return fmt.Errorf("%w: event_distance_km must be positive", ErrInvalidConfig)
	}
	if !validUnit(c.RouteUnit) {
		return fmt.Errorf("%w: route_unit must be km or mi, got %q", ErrInvalidConfig, c.RouteUnit)
	}
	if !validUnit(c.DisplayUnit) {
		return fmt.Errorf("%w: display_unit must be km or mi, got %q", ErrInvalidConfig, c.DisplayUnit)
	}
	return nil
}

func validUnit(u string) bool {
	return u == UnitKilometers || u == UnitMiles
}
