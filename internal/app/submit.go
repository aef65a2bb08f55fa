package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/coachboard/internal/adapters/repository"
	"github.com/okian/coachboard/internal/domain/assessment"
	"github.com/okian/coachboard/internal/domain/injury"
	"github.com/okian/coachboard/internal/domain/movement"
	"github.com/okian/coachboard/pkg/logger"
	"github.com/okian/coachboard/pkg/metrics"
)

// Record ids derived from an idempotency key live in this namespace so the
// same key always maps to the same record.
var idempotencyNamespace = uuid.MustParse("5b0c3a3e-8f0e-4a53-9a57-3c1f4d2f7a10")

// Submission acknowledges a stored evaluation. Duplicate is set when the
// idempotency key was already used; Record is then the earlier record when
// it is still available.
type Submission struct {
	Duplicate bool              `json:"duplicate"`
	Record    repository.Record `json:"record"`
}

// SubmitAssessment evaluates and stores an assessment.
func (s *Service) SubmitAssessment(ctx context.Context, key string, in assessment.Input) (Submission, error) {
	ev, err := s.EvaluateAssessment(ctx, in)
	if err != nil {
		return Submission{}, err
	}
	return s.submit(ctx, repository.KindAssessment, key, ev.Result.Normalized.AthleteID, ev)
}

// SubmitMovement evaluates and stores a movement screen.
func (s *Service) SubmitMovement(ctx context.Context, key string, in movement.Input) (Submission, error) {
	ev, err := s.EvaluateMovement(ctx, in)
	if err != nil {
		return Submission{}, err
	}
	return s.submit(ctx, repository.KindMovement, key, ev.Result.Normalized.AthleteID, ev)
}

// SubmitInjury evaluates and stores an injury.
func (s *Service) SubmitInjury(ctx context.Context, key string, in injury.Input) (Submission, error) {
	ev, err := s.EvaluateInjury(ctx, in)
	if err != nil {
		return Submission{}, err
	}
	return s.submit(ctx, repository.KindInjury, key, ev.Result.Normalized.AthleteID, ev)
}

func (s *Service) submit(ctx context.Context, kind repository.Kind, key, athleteID string, payload any) (Submission, error) {
	id := uuid.NewString()
	scoped := string(kind) + ":" + key
	if key != "" {
		id = uuid.NewSHA1(idempotencyNamespace, []byte(scoped)).String()
		if s.deduper.SeenAndRecord(ctx, scoped) {
			return s.duplicate(ctx, kind, id)
		}
	}

	rec := repository.Record{ID: id, Kind: kind, AthleteID: athleteID, Payload: payload}
	if err := s.store.Save(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			// The key was evicted from the idempotency set but its record
			// is still stored.
			return s.duplicate(ctx, kind, id)
		}
		if key != "" {
			s.deduper.Unrecord(ctx, scoped)
		}
		metrics.RecordErrorByComponent("service", "store")
		s.logger.Error(ctx, "store evaluation failed", logger.String("kind", string(kind)), logger.Error(err))
		return Submission{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	stored, err := s.store.Get(ctx, id)
	if err != nil {
		stored = rec
	}
	s.logger.Info(ctx, "evaluation stored",
		logger.String("kind", string(kind)),
		logger.String("id", id),
		logger.String("athleteId", athleteID),
		logger.Bool("idempotent", key != ""),
	)
	return Submission{Record: stored}, nil
}

func (s *Service) duplicate(ctx context.Context, kind repository.Kind, id string) (Submission, error) {
	metrics.RecordDuplicateSubmission(string(kind))
	s.logger.Debug(ctx, "duplicate submission", logger.String("kind", string(kind)), logger.String("id", id))

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		// The first submission with this key has not been stored yet.
		return Submission{Duplicate: true, Record: repository.Record{ID: id, Kind: kind}}, nil
	}
	return Submission{Duplicate: true, Record: rec}, nil
}
