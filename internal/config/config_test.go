package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/sensorboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:5000/api")
			convey.So(cfg.AutoRefresh, convey.ShouldBeTrue)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 3*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.ChartFormat, convey.ShouldEqual, config.FormatSVG)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"relative base url", func(c *config.Config) { c.APIBaseURL = "/api" }},
			{"zero interval", func(c *config.Config) { c.RefreshIntervalMS = 0 }},
			{"negative timeout", func(c *config.Config) { c.RequestTimeoutMS = -1 }},
			{"unknown format", func(c *config.Config) { c.ChartFormat = "gif" }},
			{"zero width", func(c *config.Config) { c.ChartWidth = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When it has "+tc.name, func() {
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When the format is png", func() {
			cfg.ChartFormat = config.FormatPNG

			convey.Convey("Then it is accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
