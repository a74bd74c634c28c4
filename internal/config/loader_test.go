package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/parkstats/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.EventDistanceKm, convey.ShouldEqual, 5.0)
				convey.So(cfg.RouteUnit, convey.ShouldEqual, "mi")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PARKSTATS_ADDR", ":8080")
			_ = os.Setenv("PARKSTATS_RESULTS_FILE", "/data/me.csv")
			_ = os.Setenv("PARKSTATS_EVENT_DISTANCE_KM", "2")
			_ = os.Setenv("PARKSTATS_ROUTE_UNIT", "km")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ResultsFile, convey.ShouldEqual, "/data/me.csv")
				convey.So(cfg.EventDistanceKm, convey.ShouldEqual, 2.0)
				convey.So(cfg.RouteUnit, convey.ShouldEqual, "km")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
results_file: "runs.csv"
route_file: "lejog.gpx"
display_unit: "mi"
start_label: "Land's End"
end_label: "John o' Groats"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PARKSTATS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ResultsFile, convey.ShouldEqual, "runs.csv")
				convey.So(cfg.RouteFile, convey.ShouldEqual, "lejog.gpx")
				convey.So(cfg.DisplayUnit, convey.ShouldEqual, "mi")
				convey.So(cfg.EndLabel, convey.ShouldEqual, "John o' Groats")
				convey.So(cfg.EventDistanceKm, convey.ShouldEqual, 5.0)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nroute_file: \"a.gpx\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PARKSTATS_CONFIG", tmpFile)
			_ = os.Setenv("PARKSTATS_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RouteFile, convey.ShouldEqual, "a.gpx")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PARKSTATS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PARKSTATS_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("PARKSTATS_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown unit", func() {
			_ = os.Setenv("PARKSTATS_DISPLAY_UNIT", "parsec")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid numeric value", func() {
			_ = os.Setenv("PARKSTATS_EVENT_DISTANCE_KM", "five")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "parkstats-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"PARKSTATS_CONFIG",
		"PARKSTATS_ADDR",
		"PARKSTATS_LOG_LEVEL",
		"PARKSTATS_RESULTS_FILE",
		"PARKSTATS_ROUTE_FILE",
		"PARKSTATS_EVENT_DISTANCE_KM",
		"PARKSTATS_ROUTE_UNIT",
		"PARKSTATS_DISPLAY_UNIT",
		"PARKSTATS_START_LABEL",
		"PARKSTATS_END_LABEL",
	} {
		_ = os.Unsetenv(name)
	}
}
