package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/sensorboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.RefreshIntervalMS, convey.ShouldEqual, 3000)
				convey.So(cfg.AutoRefresh, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SENSORBOARD_ADDR", ":8080")
			_ = os.Setenv("SENSORBOARD_API_BASE_URL", "http://sdmm:5000/api")
			_ = os.Setenv("SENSORBOARD_AUTO_REFRESH", "false")
			_ = os.Setenv("SENSORBOARD_REFRESH_INTERVAL_MS", "1500")
			_ = os.Setenv("SENSORBOARD_CHART_FORMAT", "png")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://sdmm:5000/api")
				convey.So(cfg.AutoRefresh, convey.ShouldBeFalse)
				convey.So(cfg.RefreshIntervalMS, convey.ShouldEqual, 1500)
				convey.So(cfg.ChartFormat, convey.ShouldEqual, "png")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
api_base_url: "http://backend:5000/api"
refresh_interval_ms: 10000
chart_width: 640
`
			tmpFile := writeConfig(dir, yamlContent)

			_ = os.Setenv("SENSORBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://backend:5000/api")
				convey.So(cfg.RefreshIntervalMS, convey.ShouldEqual, 10000)
				convey.So(cfg.ChartWidth, convey.ShouldEqual, 640)
				convey.So(cfg.ChartHeight, convey.ShouldEqual, 480)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := writeConfig(dir, "addr: \":9090\"\nrequest_timeout_ms: 750\n")

			_ = os.Setenv("SENSORBOARD_CONFIG", tmpFile)
			_ = os.Setenv("SENSORBOARD_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 750)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := writeConfig(dir, `invalid: yaml: content: [`)

			_ = os.Setenv("SENSORBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a file error", func() {
				convey.So(errors.Is(err, config.ErrConfigFile), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SENSORBOARD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should name the missing file", func() {
				convey.So(errors.Is(err, config.ErrConfigFile), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "/non/existent/file.yaml")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SENSORBOARD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SENSORBOARD_REFRESH_INTERVAL_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrConfigFile), convey.ShouldBeFalse)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading an explicit file path", func() {
			clearConfigEnvVars()
			tmpFile := writeConfig(dir, "chart_format: png\n")

			cfg, err := config.LoadFile(tmpFile)

			convey.Convey("Then the file layer applies", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ChartFormat, convey.ShouldEqual, config.FormatPNG)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		config.EnvConfigFile,
		"SENSORBOARD_ADDR",
		"SENSORBOARD_API_BASE_URL",
		"SENSORBOARD_AUTO_REFRESH",
		"SENSORBOARD_REFRESH_INTERVAL_MS",
		"SENSORBOARD_REQUEST_TIMEOUT_MS",
		"SENSORBOARD_CHART_FORMAT",
	} {
		_ = os.Unsetenv(name)
	}
}

// writeConfig writes a YAML document into dir and returns its path.
func writeConfig(dir, content string) string {
	f, err := os.CreateTemp(dir, "sensorboard-*.yaml")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}
