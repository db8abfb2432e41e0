package refresh

import (
	"time"

	"github.com/okian/sensorboard/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithInterval sets the auto-refresh cadence.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler receives every fetch or render failure of the latest request.
// It runs on the goroutine that called FetchAndRender and must not call Dispose.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}
