package runner

import (
	"log/slog"
	"time"
)

// DefaultSpeed is the auto-run delay between two steps.
const DefaultSpeed = 200 * time.Millisecond

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithSpeed sets the initial auto-run delay. Non-positive values are ignored.
func WithSpeed(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.speed = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver registers a callback that receives a View after every change.
// The observer runs while the controller lock is held and must not call
// back into the Controller.
func WithObserver(obs Observer) Option {
	return func(c *Controller) {
		c.observer = obs
	}
}
