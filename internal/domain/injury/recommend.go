package injury

import "strings"

// Plan lines.
const (
	PlanAcute     = "Load management (24–72h), pain-modulated ROM, isometrics"
	PlanSubacute  = "Gradual load, eccentrics, movement quality, address deficits"
	PlanRTP       = "Return-to-play progressions, reactive strength, sport-specific"
	PlanHamstring = "Nordic curls, high-speed running exposure when pain-free"
	PlanAnkle     = "Ankle DF mobs, balance/proprioception, hopping progressions"
)

// RecommendInput is what the rehab plan depends on.
type RecommendInput struct {
	RiskBand string
	Stage    string
	Area     string
}

// Recommendations are the qualitative outcome of an injury evaluation.
type Recommendations struct {
	Badges []string `json:"badges"`
	Plan   []string `json:"plan"`
}

// Recommend builds the rehab plan: stage advice first, then area-specific
// lines. The hamstring and ankle checks are independent.
func Recommend(in RecommendInput) Recommendations {
	plan := make([]string, 0, 3)
	switch in.Stage {
	case StageAcute:
		plan = append(plan, PlanAcute)
	case StageSubacute:
		plan = append(plan, PlanSubacute)
	default:
		plan = append(plan, PlanRTP)
	}

	area := strings.ToLower(in.Area)
	if strings.Contains(area, "hamstring") {
		plan = append(plan, PlanHamstring)
	}
	if strings.Contains(area, "ankle") {
		plan = append(plan, PlanAnkle)
	}
	return Recommendations{Badges: []string{in.RiskBand}, Plan: plan}
}

// RecommendFor feeds a normalized result into Recommend.
func RecommendFor(r Result) Recommendations {
	return Recommend(RecommendInput{
		RiskBand: r.Metrics.RiskBand,
		Stage:    r.Normalized.Stage,
		Area:     r.Normalized.Area,
	})
}
