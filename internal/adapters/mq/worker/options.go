// Package worker runs jobs from a queue on a fixed set of goroutines.
package worker

import (
	"github.com/okian/coachboard/pkg/logger"
)

// Option applies a configuration option to a Pool.
type Option func(*config)

type config struct {
	name   string
	logger logger.Logger
}

// WithName sets the pool name used in logs and metrics.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
