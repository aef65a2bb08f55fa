package injury

import "strings"

// Record is an injury row as stored by the athlete backend, where severity
// and status are coach-facing labels rather than numbers and stages.
type Record struct {
	AthleteID    any    `json:"athlete_id"`
	DateReported string `json:"date_reported"`
	Area         string `json:"area"`
	Severity     string `json:"severity"`
	Status       string `json:"status"`
	Diagnosis    string `json:"diagnosis"`
	Mechanism    string `json:"mechanism"`
	Notes        string `json:"notes"`
}

// Backend severity labels and statuses.
const (
	SeverityMinor    = "Minor"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"

	StatusActive     = "Active"
	StatusRecovering = "Recovering"
	StatusResolved   = "Resolved"
)

const unknownSeverity = 5

var severityScores = map[string]float64{
	SeverityMinor:    3,
	SeverityModerate: 6,
	SeveritySevere:   8,
}

var statusStages = map[string]string{
	StatusActive:     StageAcute,
	StatusRecovering: StageSubacute,
	StatusResolved:   StageRTP,
}

// FromRecord converts a backend row into an Input. Unknown severity labels
// score 5, unknown statuses are treated as acute and the side is read from
// the area text.
func FromRecord(r Record) Input {
	sev, ok := severityScores[r.Severity]
	if !ok {
		sev = unknownSeverity
	}
	stage, ok := statusStages[r.Status]
	if !ok {
		stage = StageAcute
	}
	return Input{
		AthleteID:    r.AthleteID,
		DateReported: r.DateReported,
		Area:         r.Area,
		Side:         sideOf(r.Area),
		Severity:     sev,
		Status:       strings.ToLower(r.Status),
		Diagnosis:    r.Diagnosis,
		Mechanism:    r.Mechanism,
		Stage:        stage,
		Notes:        r.Notes,
	}
}

func sideOf(area string) string {
	a := strings.ToLower(area)
	switch {
	case strings.Contains(a, "left"):
		return "Left"
	case strings.Contains(a, "right"):
		return "Right"
	default:
		return "N/A"
	}
}

// IsActive reports whether a status, in any letter case, still counts as a
// current injury.
func IsActive(status string) bool {
	return strings.EqualFold(status, StatusActive) || strings.EqualFold(status, StatusRecovering)
}
