// Package queue provides a bounded in-memory FIFO of jobs.
package queue

// Option applies a configuration option to an InMemoryQueue.
type Option func(*config)

type config struct {
	capacity int
	name     string
}

// WithCapacity sets the maximum number of buffered items.
func WithCapacity(capacity int) Option {
	return func(c *config) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithName labels the queue depth metric.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}
