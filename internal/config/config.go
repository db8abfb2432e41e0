// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and SENSORBOARD_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Chart output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIBaseURL is the SDMM backend root, including the /api prefix.
	APIBaseURL string `koanf:"api_base_url"`

	// AutoRefresh enables the refresh session when the dashboard mounts.
	AutoRefresh bool `koanf:"auto_refresh"`

	// RefreshIntervalMS is the auto-refresh cadence.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// RequestTimeoutMS bounds every backend request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// ChartFormat is svg or png.
	ChartFormat string `koanf:"chart_format"`

	// ChartWidth and ChartHeight size the rendered pie in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		APIBaseURL:        "http://localhost:5000/api",
		AutoRefresh:       true,
		RefreshIntervalMS: 3000,
		RequestTimeoutMS:  5000,
		ChartFormat:       FormatSVG,
		ChartWidth:        480,
		ChartHeight:       480,
	}
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks the fields that the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api_base_url must be an absolute URL, got %q", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.RefreshIntervalMS <= 0 {
		return fmt.Errorf("%w: refresh_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.ChartFormat {
	case FormatSVG, FormatPNG:
	default:
		return fmt.Errorf("%w: chart_format must be svg or png, got %q", ErrInvalidConfig, c.ChartFormat)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("%w: chart_width and chart_height must be positive", ErrInvalidConfig)
	}
	return nil
}
