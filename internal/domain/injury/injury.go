// Package injury scores logged injuries by severity, rehab stage and
// recency, and suggests a rehab plan.
package injury

import (
	"strings"
	"time"

	"github.com/okian/coachboard/internal/domain/numeric"
	"github.com/okian/coachboard/internal/domain/rules"
)

// Rehab stages.
const (
	StageAcute    = "acute"
	StageSubacute = "subacute"
	StageRTP      = "rtp"
)

// Risk bands.
const (
	BandHigh     = "High"
	BandModerate = "Moderate"
	BandLow      = "Low"
)

const (
	maxSeverity   = 10
	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

var stageWeights = map[string]float64{
	StageAcute:    1.0,
	StageSubacute: 0.6,
}

const otherStageWeight = 0.3

// IsCurrent reports whether an injury form still counts against the athlete:
// its status is active or recovering, or it names an acute or subacute
// stage. The acute default filled in for a missing stage does not count.
func IsCurrent(in Input) bool {
	if IsActive(numeric.Text(in.Status, "")) {
		return true
	}
	_, ok := stageWeights[numeric.Text(in.Stage, "")]
	return ok
}

// StageWeight returns the risk multiplier for a stage. Anything other than
// acute or subacute, including an empty stage, weighs 0.3.
func StageWeight(stage string) float64 {
	if w, ok := stageWeights[stage]; ok {
		return w
	}
	return otherStageWeight
}

var bandChain = rules.Chain[float64]{
	{Label: BandHigh, When: func(score float64) bool { return score >= 7 }},
	{Label: BandModerate, When: func(score float64) bool { return score >= 4 }},
	{Label: BandLow, When: rules.Otherwise[float64]()},
}

// Band maps a risk score to its band.
func Band(score float64) string {
	b, _ := bandChain.First(score)
	return b
}

// Input is the raw injury form.
type Input struct {
	AthleteID    any `json:"athlete_id"`
	DateReported any `json:"date_reported"`
	Area         any `json:"area"`
	Side         any `json:"side"`
	Severity     any `json:"severity"`
	Status       any `json:"status"`
	Mechanism    any `json:"mechanism"`
	Diagnosis    any `json:"diagnosis"`
	Stage        any `json:"stage"`
	Notes        any `json:"notes"`
}

// Normalized is the strictly typed form of Input.
type Normalized struct {
	AthleteID    string  `json:"athleteId"`
	DateReported string  `json:"dateReported"`
	Area         string  `json:"area"`
	Side         string  `json:"side"`
	Severity     float64 `json:"severity"`
	Status       string  `json:"status"`
	Mechanism    string  `json:"mechanism"`
	Diagnosis    string  `json:"diagnosis"`
	Stage        string  `json:"stage"`
	Notes        string  `json:"notes"`
}

// Metrics are the indicators derived from an injury.
type Metrics struct {
	DaysSince int     `json:"daysSince"`
	RiskScore float64 `json:"riskScore"`
	RiskBand  string  `json:"riskBand"`
}

// Result bundles the normalized record with its metrics.
type Result struct {
	Normalized Normalized `json:"normalized"`
	Metrics    Metrics    `json:"metrics"`
}

// Normalize coerces in and scores it against the current wall clock.
func Normalize(in Input) Result {
	return NormalizeAt(in, time.Now())
}

// NormalizeAt is Normalize with an explicit reference time.
func NormalizeAt(in Input, now time.Time) Result {
	date := numeric.Text(in.DateReported, now.UTC().Format(dateLayout))
	sev := severity(in.Severity)
	score := numeric.Fixed(sev*StageWeight(numeric.Text(in.Stage, "")), 1)

	return Result{
		Normalized: Normalized{
			AthleteID:    numeric.Text(in.AthleteID, ""),
			DateReported: date,
			Area:         numeric.Text(in.Area, ""),
			Side:         numeric.Text(in.Side, "N/A"),
			Severity:     sev,
			Status:       numeric.Text(in.Status, "ongoing"),
			Mechanism:    numeric.Text(in.Mechanism, ""),
			Diagnosis:    numeric.Text(in.Diagnosis, ""),
			Stage:        numeric.Text(in.Stage, StageAcute),
			Notes:        numeric.Text(in.Notes, ""),
		},
		Metrics: Metrics{
			DaysSince: daysSince(date, now),
			RiskScore: score,
			RiskBand:  Band(score),
		},
	}
}

func severity(v any) float64 {
	return numeric.Clamp(numeric.Float(v), 0, maxSeverity)
}

// daysSince counts whole days between the reported date and now. Future and
// unparsable dates count as 0.
func daysSince(date string, now time.Time) int {
	reported, ok := parseDate(date)
	if !ok {
		return 0
	}
	secs := now.Unix() - reported.Unix()
	if secs < 0 {
		return 0
	}
	return int(secs / secondsPerDay)
}

// Date-only values are read as UTC midnight.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
