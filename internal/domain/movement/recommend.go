package movement

import (
	"sort"
	"strings"

	"github.com/okian/coachboard/internal/domain/rules"
)

// Badge labels.
const (
	BadgeHighRisk  = "High Risk"
	BadgeNeedsWork = "Needs Work"
	BadgeSolid     = "Solid"
)

// Category keys that carry a dedicated plan line.
const (
	CategoryStanding = "standing"
	CategorySplitDF  = "splitDF"
	CategoryOverhead = "overhead"
)

// Plan lines.
const (
	PlanStanding = "Knee tracking, foot tripod, glute med activation"
	PlanSplitDF  = "Ankle DF mobs, calf eccentrics, heel-elevated split squats"
	PlanOverhead = "T-spine extension, lat mobility, scap control"

	redFlagPlanPrefix = "Address red flags: "
)

// RecommendInput is the subset of metrics the recommendation rules read.
type RecommendInput struct {
	TotalFails int
	RedFlags   []string
	ByCategory Counts
}

// Recommendations are the qualitative outcome of a movement screen.
type Recommendations struct {
	Badges     []string `json:"badges"`
	FocusAreas []string `json:"focusAreas"`
	Plan       []string `json:"plan"`
}

// Screens with 2 to 4 failures and fewer than two red flags match no rule
// and get no badge.
var badgeChain = rules.Chain[RecommendInput]{
	{Label: BadgeHighRisk, When: func(in RecommendInput) bool { return len(in.RedFlags) >= 2 }},
	{Label: BadgeNeedsWork, When: func(in RecommendInput) bool { return in.TotalFails >= 5 }},
	{Label: BadgeSolid, When: func(in RecommendInput) bool { return in.TotalFails <= 1 }},
}

var categoryPlans = []struct {
	category string
	line     string
}{
	{CategoryStanding, PlanStanding},
	{CategorySplitDF, PlanSplitDF},
	{CategoryOverhead, PlanOverhead},
}

// Recommend derives the badge, focus areas and plan for a screen.
func Recommend(in RecommendInput) Recommendations {
	recs := Recommendations{
		Badges:     []string{},
		FocusAreas: focusAreas(in.ByCategory),
		Plan:       []string{},
	}
	if badge, ok := badgeChain.First(in); ok {
		recs.Badges = append(recs.Badges, badge)
	}

	focused := make(map[string]bool, len(recs.FocusAreas))
	for _, c := range recs.FocusAreas {
		focused[c] = true
	}
	for _, p := range categoryPlans {
		if focused[p.category] {
			recs.Plan = append(recs.Plan, p.line)
		}
	}
	if len(in.RedFlags) > 0 {
		recs.Plan = append(recs.Plan, redFlagPlanPrefix+strings.Join(in.RedFlags, ", "))
	}
	return recs
}

// RecommendFor is a shortcut feeding computed metrics into Recommend.
func RecommendFor(m Metrics) Recommendations {
	return Recommend(RecommendInput{
		TotalFails: m.TotalFails,
		RedFlags:   m.RedFlags,
		ByCategory: m.ByCategory,
	})
}

// focusAreas lists categories with failures, most failures first.
func focusAreas(counts Counts) []string {
	nonZero := make(Counts, 0, len(counts))
	for _, c := range counts {
		if c.Fails > 0 {
			nonZero = append(nonZero, c)
		}
	}
	sort.SliceStable(nonZero, func(i, j int) bool { return nonZero[i].Fails > nonZero[j].Fails })

	out := make([]string, len(nonZero))
	for i, c := range nonZero {
		out[i] = c.Category
	}
	return out
}
