// Package dedupe tracks idempotency keys so a submission is stored at most
// once.
package dedupe

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"
)

const defaultMaxSize = 10_000

// Deduper records seen idempotency keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so it can be retried. Used when a submission was
	// marked as seen but could not be stored.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper guards an LRU cache; lru.Cache itself is not safe for
// concurrent use and Get reorders entries, so every access takes the lock.
type inMemoryDeduper struct {
	mu      sync.Mutex
	cache   *lru.Cache
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	limit := d.maxSize
	if limit < 0 {
		limit = 0
	}
	d.cache = lru.New(limit)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.cache.Get(key); ok {
		return true
	}
	d.cache.Add(key, struct{}{})
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Remove(key)
}

// Size returns the current number of remembered keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.cache.Len())
}
