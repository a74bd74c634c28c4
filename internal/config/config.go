// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

// Distance unit names accepted by the configuration.
const (
	UnitKilometers = "km"
	UnitMiles      = "mi"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ResultsFile is the CSV export of a parkrunner's results.
	ResultsFile string `koanf:"results_file"`

	// RouteFile is a GPX track to project total distance onto. Optional.
	RouteFile string `koanf:"route_file"`

	// EventDistanceKm is the length of a single event.
	EventDistanceKm float64 `koanf:"event_distance_km"`

	// RouteUnit is the unit the route is measured in: km or mi.
	RouteUnit string `koanf:"route_unit"`

	// DisplayUnit is the default unit for summaries: km or mi.
	DisplayUnit string `koanf:"display_unit"`

	// StartLabel and EndLabel name the ends of the route.
	StartLabel string `koanf:"start_label"`
	EndLabel   string `koanf:"end_label"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		ResultsFile:     "results.csv",
		RouteFile:       "",
		EventDistanceKm: 5.0,
		RouteUnit:       UnitMiles,
		DisplayUnit:     UnitKilometers,
		StartLabel:      "Land's End",
		EndLabel:        "You are here",
	}
}
