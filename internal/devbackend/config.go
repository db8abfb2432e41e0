package devbackend

import (
	"fmt"
	"time"
)

// Config holds configuration for the dev backend.
type Config struct {
	Addr          string        // Listen address
	Sensors       int           // Size of the generated fleet
	DriftInterval time.Duration // How often sensor statuses change; 0 disables drift
	DriftRate     float64       // Share of sensors that may change status per drift, 0..1
	FailRate      float64       // Share of status summary requests answered with 500, 0..1
	Latency       time.Duration // Added to every response
	Verbose       bool          // Log every request
}

// DefaultConfig returns the settings used by cmd/dev-backend.
func DefaultConfig() Config {
	return Config{
		Addr:          ":5000",
		Sensors:       defaultSensors,
		DriftInterval: defaultDriftInterval,
		DriftRate:     defaultDriftRate,
	}
}

// Validate rejects settings the generator cannot honor.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Sensors < 0:
		return fmt.Errorf("%w: sensors must not be negative", ErrInvalidConfig)
	case c.DriftRate < 0 || c.DriftRate > 1:
		return fmt.Errorf("%w: drift rate must be within 0..1", ErrInvalidConfig)
	case c.FailRate < 0 || c.FailRate > 1:
		return fmt.Errorf("%w: fail rate must be within 0..1", ErrInvalidConfig)
	case c.Latency < 0 || c.DriftInterval < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
