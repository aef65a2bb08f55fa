package assessment

import "github.com/okian/coachboard/internal/domain/rules"

// Badge labels.
const (
	BadgeExcellent   = "Excellent"
	BadgeHighDeficit = "High Deficit"
	BadgeImproving   = "Improving"
)

// Side note labels.
const (
	NoteMeetsPower       = "meets power expectations"
	NoteNeedsPower       = "needs more power"
	NoteSignificantForce = "significant force deficit"
	NoteModerateForce    = "moderate force deficit"
	NoteOnTrack          = "on track"
)

// NoGoal is shown when the assessment carries no goal.
const NoGoal = "—"

// RecommendInput is the subset of metrics the recommendation rules read.
type RecommendInput struct {
	Ratio        Sides
	PercentBelow Sides
	Goal         string
}

// SideNotes holds per-side coaching notes.
type SideNotes struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// Recommendations are the qualitative outcome of an assessment.
type Recommendations struct {
	Badges []string  `json:"badges"`
	Notes  SideNotes `json:"notes"`
	Goal   string    `json:"goal"`
}

var badgeChain = rules.Chain[RecommendInput]{
	{Label: BadgeExcellent, When: func(in RecommendInput) bool {
		return in.Ratio.Left >= 1 && in.Ratio.Right >= 1 &&
			in.PercentBelow.Left < 10 && in.PercentBelow.Right < 10
	}},
	{Label: BadgeHighDeficit, When: func(in RecommendInput) bool {
		return in.PercentBelow.Left > 25 || in.PercentBelow.Right > 25
	}},
	{Label: BadgeImproving, When: rules.Otherwise[RecommendInput]()},
}

var deficitChain = rules.Chain[float64]{
	{Label: NoteSignificantForce, When: func(pct float64) bool { return pct > 25 }},
	{Label: NoteModerateForce, When: func(pct float64) bool { return pct > 10 }},
	{Label: NoteOnTrack, When: rules.Otherwise[float64]()},
}

// Recommend classifies each side and assigns the overall badge.
func Recommend(in RecommendInput) Recommendations {
	badge, _ := badgeChain.First(in)
	goal := in.Goal
	if goal == "" {
		goal = NoGoal
	}
	return Recommendations{
		Badges: []string{badge},
		Notes: SideNotes{
			Left:  sideNotes(in.Ratio.Left, in.PercentBelow.Left),
			Right: sideNotes(in.Ratio.Right, in.PercentBelow.Right),
		},
		Goal: goal,
	}
}

// RecommendFor is a shortcut feeding a computed Result into Recommend.
func RecommendFor(r Result) Recommendations {
	return Recommend(RecommendInput{
		Ratio:        r.Metrics.Ratio,
		PercentBelow: r.Metrics.PercentBelow,
		Goal:         r.Normalized.Goal,
	})
}

func sideNotes(ratio, percentBelow float64) []string {
	strength := NoteNeedsPower
	if ratio >= 1 {
		strength = NoteMeetsPower
	}
	deficit, _ := deficitChain.First(percentBelow)
	return []string{strength, deficit}
}
