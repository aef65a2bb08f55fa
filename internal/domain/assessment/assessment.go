// Package assessment derives force/power indicators from a force-plate
// assessment and turns them into coaching badges and notes.
//
// Inputs arrive as loosely typed form values. They are coerced once by
// Compute into a Normalized record; malformed numbers become 0 and nothing
// in this package returns an error.
package assessment

import (
	"math"
	"time"

	"github.com/okian/coachboard/internal/domain/numeric"
)

// DefaultTargetCoefficient models expected countermovement force relative to
// bodyweight.
const DefaultTargetCoefficient = 6.68

const dateLayout = "2006-01-02"

// Input is the raw assessment form. Every field may hold a string, a number
// or nil.
type Input struct {
	AthleteID    any `json:"athlete_id"`
	Date         any `json:"date"`
	Age          any `json:"age"`
	Weight       any `json:"weight"`
	CMFLeft      any `json:"cmf_left"`
	CMFRight     any `json:"cmf_right"`
	CMPLeft      any `json:"cmp_left"`
	CMPRight     any `json:"cmp_right"`
	CustomTarget any `json:"custom_target"`
	Goal         any `json:"goal"`
	CoachComment any `json:"coach_comment"`
}

// Sides holds a left/right pair.
type Sides struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Normalized is the strictly typed form of Input.
type Normalized struct {
	AthleteID  string  `json:"athleteId"`
	Date       string  `json:"date"`
	Age        int     `json:"age"`
	Weight     float64 `json:"weight"`
	CMF        Sides   `json:"cmf"`
	CMP        Sides   `json:"cmp"`
	Goal       string  `json:"goal"`
	CoachNotes string  `json:"coachNotes"`
}

// Metrics are the indicators derived from a Normalized record.
type Metrics struct {
	Target       float64 `json:"target"`
	Deficit      Sides   `json:"deficit"`
	PercentBelow Sides   `json:"percentBelow"`
	Ratio        Sides   `json:"ratio"`
}

// Result bundles the normalized record with its metrics.
type Result struct {
	Normalized Normalized `json:"normalized"`
	Metrics    Metrics    `json:"metrics"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithTargetCoefficient overrides the bodyweight multiplier used when no
// custom target is given. Non-positive values are ignored.
func WithTargetCoefficient(c float64) Option {
	return func(e *Engine) {
		if c > 0 && !math.IsInf(c, 0) {
			e.coefficient = c
		}
	}
}

// Engine computes assessment metrics. It holds only immutable policy and is
// safe for concurrent use.
type Engine struct {
	coefficient float64
}

// NewEngine creates an Engine with the default policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{coefficient: DefaultTargetCoefficient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TargetCoefficient reports the bodyweight multiplier in use.
func (e *Engine) TargetCoefficient() float64 { return e.coefficient }

var defaultEngine = NewEngine()

// Compute normalizes in and derives its metrics with the default policy.
func Compute(in Input) Result {
	return defaultEngine.ComputeAt(in, time.Now())
}

// ComputeAt is Compute with an explicit reference time, used only to fill a
// missing assessment date.
func ComputeAt(in Input, now time.Time) Result {
	return defaultEngine.ComputeAt(in, now)
}

// Compute normalizes in and derives its metrics.
func (e *Engine) Compute(in Input) Result {
	return e.ComputeAt(in, time.Now())
}

// ComputeAt is Compute with an explicit reference time.
func (e *Engine) ComputeAt(in Input, now time.Time) Result {
	n := normalize(in, now)
	return Result{Normalized: n, Metrics: e.metrics(n, numeric.Float(in.CustomTarget))}
}

func normalize(in Input, now time.Time) Normalized {
	return Normalized{
		AthleteID:  numeric.Text(in.AthleteID, ""),
		Date:       numeric.Text(in.Date, now.UTC().Format(dateLayout)),
		Age:        numeric.Int(in.Age),
		Weight:     numeric.Float(in.Weight),
		CMF:        Sides{Left: numeric.Float(in.CMFLeft), Right: numeric.Float(in.CMFRight)},
		CMP:        Sides{Left: numeric.Float(in.CMPLeft), Right: numeric.Float(in.CMPRight)},
		Goal:       numeric.Text(in.Goal, ""),
		CoachNotes: numeric.Text(in.CoachComment, ""),
	}
}

func (e *Engine) metrics(n Normalized, customTarget float64) Metrics {
	target := customTarget
	if target == 0 {
		target = numeric.Round(n.Weight * e.coefficient)
	}

	m := Metrics{Target: target}
	m.Deficit.Left, m.PercentBelow.Left, m.Ratio.Left = side(target, n.CMF.Left, n.CMP.Left)
	m.Deficit.Right, m.PercentBelow.Right, m.Ratio.Right = side(target, n.CMF.Right, n.CMP.Right)
	return m
}

// side computes one side independently of the other.
func side(target, cmf, cmp float64) (deficit, percentBelow, ratio float64) {
	deficit = math.Max(0, target-cmf)
	if target > 0 {
		percentBelow = numeric.Fixed(deficit/target*100, 1)
	}
	if cmf > 0 {
		ratio = numeric.Fixed(cmp/cmf, 2)
	}
	return deficit, percentBelow, ratio
}
