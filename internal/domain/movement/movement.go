// Package movement tallies movement-screen checklists: failures per test
// category, red-flag findings and the most frequent issues, plus the
// coaching plan that follows from them.
package movement

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/okian/coachboard/internal/domain/numeric"
)

const (
	dateLayout   = "2006-01-02"
	maxTopIssues = 5
)

// Red-flag labels: failures considered high clinical priority.
const (
	KneeValgus              = "Knee Valgus"
	ContralateralHipDrop    = "Contralateral Hip Drop"
	ExcessiveLumbarLordosis = "Excessive Lumbar Lordosis"
)

var redFlagSet = map[string]struct{}{
	KneeValgus:              {},
	ContralateralHipDrop:    {},
	ExcessiveLumbarLordosis: {},
}

// IsRedFlag reports whether label belongs to the fixed red-flag set.
func IsRedFlag(label string) bool {
	_, ok := redFlagSet[label]
	return ok
}

// Input is the raw movement-screen form.
type Input struct {
	AthleteID any   `json:"athlete_id"`
	Date      any   `json:"date"`
	Notes     any   `json:"notes"`
	Tests     Tests `json:"tests"`
}

// Normalized is the strictly typed form of Input.
type Normalized struct {
	AthleteID string `json:"athleteId"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
	Tests     Tests  `json:"tests"`
}

// Count is the number of failures recorded for one category.
type Count struct {
	Category string
	Fails    int
}

// Counts lists per-category failure counts in category order. It marshals
// as a JSON object.
type Counts []Count

// Get returns the count for category, or 0 when absent.
func (c Counts) Get(category string) int {
	for _, n := range c {
		if n.Category == category {
			return n.Fails
		}
	}
	return 0
}

// MarshalJSON writes the counts as an ordered JSON object.
func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, n.Category); err != nil {
			return nil, err
		}
		b, err := json.Marshal(n.Fails)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Issue is a failed label and the number of categories it failed in.
type Issue struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Metrics summarises the failures of a movement screen.
type Metrics struct {
	ByCategory Counts   `json:"byCategory"`
	TotalFails int      `json:"totalFails"`
	RedFlags   []string `json:"redFlags"`
	TopIssues  []Issue  `json:"topIssues"`
}

// Result bundles the normalized record with its metrics.
type Result struct {
	Normalized Normalized `json:"normalized"`
	Metrics    Metrics    `json:"metrics"`
}

// Compute normalizes in and tallies its checklist.
func Compute(in Input) Result {
	return ComputeAt(in, time.Now())
}

// ComputeAt is Compute with an explicit reference time, used only to fill a
// missing date.
func ComputeAt(in Input, now time.Time) Result {
	return Result{
		Normalized: Normalized{
			AthleteID: numeric.Text(in.AthleteID, ""),
			Date:      numeric.Text(in.Date, now.UTC().Format(dateLayout)),
			Notes:     numeric.Text(in.Notes, ""),
			Tests:     in.Tests,
		},
		Metrics: tally(&in.Tests),
	}
}

func tally(tests *Tests) Metrics {
	m := Metrics{
		ByCategory: make(Counts, 0, tests.Len()),
		RedFlags:   []string{},
	}

	scores := make(map[string]int)
	var order []string
	for _, cat := range tests.Categories() {
		fails := 0
		for _, chk := range cat.Checks {
			if !chk.Failed {
				continue
			}
			fails++
			if IsRedFlag(chk.Label) {
				m.RedFlags = append(m.RedFlags, chk.Label)
			}
			if _, seen := scores[chk.Label]; !seen {
				order = append(order, chk.Label)
			}
			scores[chk.Label]++
		}
		m.ByCategory = append(m.ByCategory, Count{Category: cat.Name, Fails: fails})
		m.TotalFails += fails
	}

	issues := make([]Issue, len(order))
	for i, label := range order {
		issues[i] = Issue{Label: label, Score: scores[label]}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Score > issues[j].Score })
	if len(issues) > maxTopIssues {
		issues = issues[:maxTopIssues]
	}
	m.TopIssues = issues
	return m
}
