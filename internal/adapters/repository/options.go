package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock sets the time source used to stamp records saved without a
// CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecordCountHook registers fn to be called with the new count of a
// kind after every successful Save.
func WithRecordCountHook(fn func(kind Kind, count int)) Option {
	return func(s *MemStore) {
		if fn != nil {
			s.onCount = fn
		}
	}
}
