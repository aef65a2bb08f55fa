package assessment

import (
	"encoding/json"
	"fmt"

	"github.com/okian/coachboard/internal/domain/numeric"
)

// Record is the persisted shape of an evaluated assessment: the normalized
// inputs alongside every computed value.
type Record struct {
	AthleteID    string   `json:"athlete_id"`
	Date         string   `json:"date"`
	Age          int      `json:"age"`
	Weight       float64  `json:"weight"`
	CMFLeft      float64  `json:"cmf_left"`
	CMFRight     float64  `json:"cmf_right"`
	CMPLeft      float64  `json:"cmp_left"`
	CMPRight     float64  `json:"cmp_right"`
	CustomTarget *float64 `json:"custom_target"`
	Goal         string   `json:"goal"`
	CoachComment string   `json:"coach_comment"`

	RatioLeft             float64 `json:"ratio_left"`
	RatioRight            float64 `json:"ratio_right"`
	RecommendationSummary string  `json:"recommendation_summary"`

	TargetForce       float64 `json:"target_force"`
	DeficitLeft       float64 `json:"deficit_left"`
	DeficitRight      float64 `json:"deficit_right"`
	PercentBelowLeft  float64 `json:"percent_below_left"`
	PercentBelowRight float64 `json:"percent_below_right"`
}

// BuildRecord assembles the persisted record from the raw input, its
// computed result and recommendations.
func BuildRecord(in Input, r Result, recs Recommendations) (Record, error) {
	summary, err := json.Marshal(recs)
	if err != nil {
		return Record{}, fmt.Errorf("assessment: encode recommendation summary: %w", err)
	}
	n, m := r.Normalized, r.Metrics
	return Record{
		AthleteID:             n.AthleteID,
		Date:                  n.Date,
		Age:                   n.Age,
		Weight:                n.Weight,
		CMFLeft:               n.CMF.Left,
		CMFRight:              n.CMF.Right,
		CMPLeft:               n.CMP.Left,
		CMPRight:              n.CMP.Right,
		CustomTarget:          customTarget(in.CustomTarget),
		Goal:                  n.Goal,
		CoachComment:          n.CoachNotes,
		RatioLeft:             m.Ratio.Left,
		RatioRight:            m.Ratio.Right,
		RecommendationSummary: string(summary),
		TargetForce:           m.Target,
		DeficitLeft:           m.Deficit.Left,
		DeficitRight:          m.Deficit.Right,
		PercentBelowLeft:      m.PercentBelow.Left,
		PercentBelowRight:     m.PercentBelow.Right,
	}, nil
}

// customTarget keeps an explicitly entered target, including 0, and drops
// blanks and values that do not parse.
func customTarget(v any) *float64 {
	if !numeric.Truthy(v) {
		return nil
	}
	f, ok := numeric.Parse(v)
	if !ok {
		return nil
	}
	return &f
}
