package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/coachboard/pkg/metrics"
)

type athleteKey struct {
	athleteID string
	kind      Kind
}

// MemStore is an in-memory Store. Records are kept in insertion order per
// kind and indexed by id and by athlete.
type MemStore struct {
	mu        sync.RWMutex
	byID      map[string]Record
	byKind    map[Kind][]string
	byAthlete map[athleteKey][]string

	now     func() time.Time
	onCount func(kind Kind, count int)
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store. By default record counts are
// published to the stored-records gauge.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		byID:      make(map[string]Record),
		byKind:    make(map[Kind][]string),
		byAthlete: make(map[athleteKey][]string),
		now:       time.Now,
		onCount: func(kind Kind, count int) {
			metrics.UpdateRecordsStored(string(kind), count)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) Save(_ context.Context, rec Record) error {
	if rec.ID == "" || rec.Kind == "" {
		return fmt.Errorf("%w: id and kind are required", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	if _, ok := s.byID[rec.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	s.byID[rec.ID] = rec
	s.byKind[rec.Kind] = append(s.byKind[rec.Kind], rec.ID)
	ak := athleteKey{athleteID: rec.AthleteID, kind: rec.Kind}
	s.byAthlete[ak] = append(s.byAthlete[ak], rec.ID)
	count := len(s.byKind[rec.Kind])
	s.mu.Unlock()

	s.onCount(rec.Kind, count)
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (s *MemStore) ListByAthlete(_ context.Context, athleteID string, kind Kind, limit int) ([]Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newest(s.byAthlete[athleteKey{athleteID: athleteID, kind: kind}], limit), nil
}

func (s *MemStore) Latest(_ context.Context, kind Kind, n int) ([]Record, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newest(s.byKind[kind], n), nil
}

func (s *MemStore) All(_ context.Context, kind Kind) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byKind[kind]
	out := make([]Record, len(ids))
	for i, id := range ids {
		out[i] = s.byID[id]
	}
	return out, nil
}

func (s *MemStore) Count(_ context.Context, kind Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKind[kind])
}

// newest walks ids backwards. Must be called with s.mu held.
func (s *MemStore) newest(ids []string, limit int) []Record {
	n := len(ids)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := len(ids) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.byID[ids[i]])
	}
	return out
}
