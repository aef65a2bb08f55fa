// Package service binds the evaluation engines to record storage and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/coachboard/internal/adapters/repository"
	"github.com/okian/coachboard/internal/domain/assessment"
	"github.com/okian/coachboard/internal/domain/dedupe"
	"github.com/okian/coachboard/pkg/logger"
)

const (
	defaultIdempotencySize = 10_000
	defaultHistoryLimit    = 100
	overviewLatest         = 5
)

// Service evaluates athlete records and keeps submitted evaluations.
type Service struct {
	mu sync.RWMutex

	store       repository.Store
	deduper     dedupe.Deduper
	assessments *assessment.Engine

	idempotencySize   int
	historyLimit      int
	targetCoefficient float64
	now               func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the in-memory record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDeduper replaces the idempotency key set.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithIdempotencySize bounds the remembered idempotency keys.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithHistoryLimit caps the records returned by History.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithTargetCoefficient sets the assessment body-weight coefficient.
func WithTargetCoefficient(coef float64) Option {
	return func(s *Service) {
		if coef > 0 {
			s.targetCoefficient = coef
		}
	}
}

// WithClock sets the reference time source for evaluations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Components not supplied through options are
// created in memory.
func New(opts ...Option) *Service {
	s := &Service{
		idempotencySize:   defaultIdempotencySize,
		historyLimit:      defaultHistoryLimit,
		targetCoefficient: assessment.DefaultTargetCoefficient,
		now:               time.Now,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemStore(repository.WithClock(s.now))
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))
	}
	s.assessments = assessment.NewEngine(assessment.WithTargetCoefficient(s.targetCoefficient))
	return s
}

// Start marks the service ready. It is safe to call more than once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.Float64("targetCoefficient", s.targetCoefficient),
		logger.Int("idempotencySize", s.idempotencySize),
		logger.Int("historyLimit", s.historyLimit),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "evaluation service stopped")
}

// Ready reports whether Start has been called.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	ctx := context.Background()
	stats := map[string]any{
		"started":           s.Ready(),
		"targetCoefficient": s.targetCoefficient,
		"idempotencySize":   s.idempotencySize,
		"idempotencyKeys":   s.deduper.Size(),
	}
	records := make(map[string]int, len(repository.Kinds))
	for _, k := range repository.Kinds {
		records[string(k)] = s.store.Count(ctx, k)
	}
	stats["records"] = records
	return stats
}
