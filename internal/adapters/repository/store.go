// Package repository defines the evaluation record store and an in-memory
// implementation of it.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind names what a record evaluates.
type Kind string

// Record kinds.
const (
	KindAssessment Kind = "assessment"
	KindMovement   Kind = "movement"
	KindInjury     Kind = "injury"
)

// Kinds lists every record kind in display order.
var Kinds = []Kind{KindAssessment, KindMovement, KindInjury}

// ParseKind accepts a kind in singular or plural form, e.g. "injuries".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assessment", "assessments":
		return KindAssessment, nil
	case "movement", "movements":
		return KindMovement, nil
	case "injury", "injuries":
		return KindInjury, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Record is one stored evaluation. Payload holds the evaluation value as
// produced by the service and is returned as is.
type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	AthleteID string    `json:"athleteId"`
	CreatedAt time.Time `json:"createdAt"`
	Payload   any       `json:"evaluation"`
}

// Store provides read/write access to stored evaluations.
type Store interface {
	// Save stores rec. It fails with ErrDuplicateID if the id exists and
	// with ErrInvalidRecord if id or kind is missing.
	Save(ctx context.Context, rec Record) error

	// Get returns the record with id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// ListByAthlete returns up to limit records of kind for an athlete,
	// newest first. A limit of 0 means no limit.
	ListByAthlete(ctx context.Context, athleteID string, kind Kind, limit int) ([]Record, error)

	// Latest returns the n newest records of kind.
	Latest(ctx context.Context, kind Kind, n int) ([]Record, error)

	// All returns every record of kind, oldest first.
	All(ctx context.Context, kind Kind) ([]Record, error)

	// Count returns the number of records of kind.
	Count(ctx context.Context, kind Kind) int
}
