package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/coachboard/internal/adapters/repository"
	"github.com/okian/coachboard/internal/domain/assessment"
	"github.com/okian/coachboard/internal/domain/injury"
	"github.com/okian/coachboard/internal/domain/movement"
	"github.com/okian/coachboard/pkg/logger"
	"github.com/okian/coachboard/pkg/metrics"
)

// AssessmentEvaluation is a computed assessment with its recommendations and
// the record shape the athlete backend persists.
type AssessmentEvaluation struct {
	Result          assessment.Result          `json:"result"`
	Recommendations assessment.Recommendations `json:"recommendations"`
	Record          assessment.Record          `json:"record"`
}

// MovementEvaluation is a computed movement screen.
type MovementEvaluation struct {
	Result          movement.Result          `json:"result"`
	Recommendations movement.Recommendations `json:"recommendations"`
	Muscles         movement.Imbalance       `json:"muscles"`
}

// InjuryEvaluation is a normalized, scored injury.
type InjuryEvaluation struct {
	Result          injury.Result          `json:"result"`
	Recommendations injury.Recommendations `json:"recommendations"`

	// Current is derived from the raw form, before stage defaults apply.
	Current bool `json:"-"`
}

// EvaluateAssessment computes metrics and recommendations for one assessment.
func (s *Service) EvaluateAssessment(ctx context.Context, in assessment.Input) (AssessmentEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return AssessmentEvaluation{}, err
	}
	start := time.Now()

	res := s.assessments.ComputeAt(in, s.now())
	recs := assessment.RecommendFor(res)
	rec, err := assessment.BuildRecord(in, res, recs)
	if err != nil {
		metrics.RecordErrorByComponent("service", "encode")
		return AssessmentEvaluation{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	s.observe(ctx, repository.KindAssessment, start, recs.Badges,
		logger.String("athleteId", res.Normalized.AthleteID),
		logger.Float64("target", res.Metrics.Target),
	)
	return AssessmentEvaluation{Result: res, Recommendations: recs, Record: rec}, nil
}

// EvaluateMovement tallies a movement screen, ranks issues, suggests a plan
// and maps failed checks to muscle imbalances.
func (s *Service) EvaluateMovement(ctx context.Context, in movement.Input) (MovementEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return MovementEvaluation{}, err
	}
	start := time.Now()

	res := movement.ComputeAt(in, s.now())
	recs := movement.RecommendFor(res.Metrics)
	muscles := movement.AnalyzeMuscles(&res.Normalized.Tests)

	s.observe(ctx, repository.KindMovement, start, recs.Badges,
		logger.String("athleteId", res.Normalized.AthleteID),
		logger.Int("totalFails", res.Metrics.TotalFails),
		logger.Int("redFlags", len(res.Metrics.RedFlags)),
	)
	return MovementEvaluation{Result: res, Recommendations: recs, Muscles: muscles}, nil
}

// EvaluateInjury normalizes and scores an injury form.
func (s *Service) EvaluateInjury(ctx context.Context, in injury.Input) (InjuryEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return InjuryEvaluation{}, err
	}
	start := time.Now()

	res := injury.NormalizeAt(in, s.now())
	recs := injury.RecommendFor(res)

	metrics.RecordRiskBand(res.Metrics.RiskBand)
	s.observe(ctx, repository.KindInjury, start, recs.Badges,
		logger.String("athleteId", res.Normalized.AthleteID),
		logger.Float64("riskScore", res.Metrics.RiskScore),
		logger.Int("daysSince", res.Metrics.DaysSince),
	)
	return InjuryEvaluation{Result: res, Recommendations: recs, Current: injury.IsCurrent(in)}, nil
}

// EvaluateInjuryRecord scores an injury row stored by the athlete backend.
func (s *Service) EvaluateInjuryRecord(ctx context.Context, rec injury.Record) (InjuryEvaluation, error) {
	return s.EvaluateInjury(ctx, injury.FromRecord(rec))
}

func (s *Service) observe(ctx context.Context, kind repository.Kind, start time.Time, badges []string, fields ...logger.Field) {
	took := time.Since(start)
	metrics.RecordEvaluation(string(kind), took)
	metrics.RecordBadges(string(kind), badges)
	fields = append(fields,
		logger.String("kind", string(kind)),
		logger.Any("badges", badges),
		logger.Duration("took", took),
	)
	s.logger.Debug(ctx, "evaluated", fields...)
}
