package service

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/coachboard/internal/adapters/repository"
	"github.com/okian/coachboard/internal/domain/numeric"
)

// History returns an athlete's stored evaluations of kind, newest first.
func (s *Service) History(ctx context.Context, athleteID string, kind repository.Kind) ([]repository.Record, error) {
	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return nil, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}
	return s.store.ListByAthlete(ctx, athleteID, kind, s.historyLimit)
}

// Counts is the number of stored evaluations per kind.
type Counts struct {
	Assessments int `json:"assessments"`
	Movements   int `json:"movements"`
	Injuries    int `json:"injuries"`
}

// Overview summarises everything stored for the coach dashboard.
type Overview struct {
	Counts Counts `json:"counts"`

	// InjuredAthletes lists athletes with a current injury, most recent first.
	InjuredAthletes []string `json:"injuredAthletes"`
	ActiveInjuries  int      `json:"activeInjuries"`

	MeanRiskScore    float64 `json:"meanRiskScore"`
	MeanPercentBelow float64 `json:"meanPercentBelow"`

	LatestAssessments []repository.Record `json:"latestAssessments"`
	LatestMovements   []repository.Record `json:"latestMovements"`
	LatestInjuries    []repository.Record `json:"latestInjuries"`
}

// Overview builds the dashboard summary. An injury is current when its
// status is Active or Recovering or its stage is acute or subacute.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	ov := Overview{
		Counts: Counts{
			Assessments: s.store.Count(ctx, repository.KindAssessment),
			Movements:   s.store.Count(ctx, repository.KindMovement),
			Injuries:    s.store.Count(ctx, repository.KindInjury),
		},
		InjuredAthletes: []string{},
	}

	injuries, err := s.store.All(ctx, repository.KindInjury)
	if err != nil {
		return Overview{}, err
	}
	risks := make([]float64, 0, len(injuries))
	seen := make(map[string]bool)
	for i := len(injuries) - 1; i >= 0; i-- {
		ev, ok := injuries[i].Payload.(InjuryEvaluation)
		if !ok {
			continue
		}
		risks = append(risks, ev.Result.Metrics.RiskScore)
		if !ev.Current {
			continue
		}
		ov.ActiveInjuries++
		if id := ev.Result.Normalized.AthleteID; !seen[id] {
			seen[id] = true
			ov.InjuredAthletes = append(ov.InjuredAthletes, id)
		}
	}
	ov.MeanRiskScore = mean(risks)

	assessments, err := s.store.All(ctx, repository.KindAssessment)
	if err != nil {
		return Overview{}, err
	}
	below := make([]float64, 0, 2*len(assessments))
	for _, rec := range assessments {
		if ev, ok := rec.Payload.(AssessmentEvaluation); ok {
			pb := ev.Result.Metrics.PercentBelow
			below = append(below, pb.Left, pb.Right)
		}
	}
	ov.MeanPercentBelow = mean(below)

	for _, l := range []struct {
		kind repository.Kind
		dst  *[]repository.Record
	}{
		{repository.KindAssessment, &ov.LatestAssessments},
		{repository.KindMovement, &ov.LatestMovements},
		{repository.KindInjury, &ov.LatestInjuries},
	} {
		recs, err := s.store.Latest(ctx, l.kind, overviewLatest)
		if err != nil {
			return Overview{}, err
		}
		*l.dst = recs
	}
	return ov, nil
}

// mean rounds to one decimal; an empty sample has mean 0.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return numeric.Fixed(stat.Mean(xs, nil), 1)
}
