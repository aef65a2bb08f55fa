// Package queue provides a bounded in-memory FIFO of jobs.
package queue

import (
	"context"
	"sync"

	"github.com/okian/coachboard/pkg/metrics"
)

const defaultCapacity = 1024

// Queue provides enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue blocks until the item is buffered, ctx is done or the queue
	// is closed.
	Enqueue(ctx context.Context, item T) error

	// TryEnqueue buffers the item only if there is room.
	TryEnqueue(item T) error

	// Dequeue returns the channel items are received from. It is closed
	// once the queue is closed and drained.
	Dequeue() <-chan T

	// Len returns the current number of queued items.
	Len() int

	// Close stops accepting items. Buffered items stay readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items chan T
	name  string

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	c := config{capacity: defaultCapacity, name: "default"}
	for _, opt := range opts {
		opt(&c)
	}
	q := &InMemoryQueue[T]{items: make(chan T, c.capacity), name: c.name}
	metrics.UpdateQueueDepth(q.name, 0)
	return q
}

// Enqueue adds an item, waiting for room.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.items <- item:
		metrics.UpdateQueueDepth(q.name, len(q.items))
		return nil
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	}
}

// TryEnqueue adds an item without waiting.
func (q *InMemoryQueue[T]) TryEnqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.items <- item:
		metrics.UpdateQueueDepth(q.name, len(q.items))
		return nil
	default:
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue[T]) Dequeue() <-chan T {
	return q.items
}

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len() int {
	n := len(q.items)
	metrics.UpdateQueueDepth(q.name, n)
	return n
}

// Close gracefully shuts down the queue. It is safe to call more than once.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
