// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/coachboard/internal/adapters/repository"
	service "github.com/okian/coachboard/internal/app"
	"github.com/okian/coachboard/internal/domain/assessment"
	"github.com/okian/coachboard/internal/domain/injury"
	"github.com/okian/coachboard/internal/domain/movement"
	"github.com/okian/coachboard/pkg/logger"
)

// Evaluator runs stateless evaluations.
type Evaluator interface {
	EvaluateAssessment(ctx context.Context, in assessment.Input) (service.AssessmentEvaluation, error)
	EvaluateMovement(ctx context.Context, in movement.Input) (service.MovementEvaluation, error)
	EvaluateInjury(ctx context.Context, in injury.Input) (service.InjuryEvaluation, error)
	EvaluateInjuryRecord(ctx context.Context, rec injury.Record) (service.InjuryEvaluation, error)
}

// Submitter evaluates and stores records under an optional idempotency key.
type Submitter interface {
	SubmitAssessment(ctx context.Context, key string, in assessment.Input) (service.Submission, error)
	SubmitMovement(ctx context.Context, key string, in movement.Input) (service.Submission, error)
	SubmitInjury(ctx context.Context, key string, in injury.Input) (service.Submission, error)
}

// Querier reads stored records.
type Querier interface {
	History(ctx context.Context, athleteID string, kind repository.Kind) ([]repository.Record, error)
	Overview(ctx context.Context) (service.Overview, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Evaluator
	Submitter
	Querier
	StatsProvider
	Ready() bool
}

// IdempotencyHeader carries the client-chosen submission key.
const IdempotencyHeader = "Idempotency-Key"

// Server wires HTTP routes for the business API.
type Server struct {
	deps    Dependencies
	metrics http.Handler
	logger  logger.Logger

	maxBodyBytes int64
	limiter      *rateLimiter

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	evaluateHandler *EvaluateHandler
	submitHandler   *SubmitHandler
	athleteHandler  *AthleteHandler
	overviewHandler *OverviewHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		logger:       logger.Nop(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	s.evaluateHandler = NewEvaluateHandler(deps, s.logger)
	s.submitHandler = NewSubmitHandler(deps, s.logger)
	s.athleteHandler = NewAthleteHandler(deps, s.logger)
	s.overviewHandler = NewOverviewHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	api := func(endpoint string, h http.HandlerFunc) http.HandlerFunc {
		return MetricsMiddleware(s.limit(s.capBody(h)), endpoint)
	}

	mux.HandleFunc("POST /api/assessments/evaluate", api("assessments_evaluate", s.evaluateHandler.HandleAssessment))
	mux.HandleFunc("POST /api/movements/evaluate", api("movements_evaluate", s.evaluateHandler.HandleMovement))
	mux.HandleFunc("POST /api/injuries/evaluate", api("injuries_evaluate", s.evaluateHandler.HandleInjury))
	mux.HandleFunc("POST /api/injuries/evaluate-record", api("injuries_evaluate_record", s.evaluateHandler.HandleInjuryRecord))

	mux.HandleFunc("POST /api/assessments", api("assessments_submit", s.submitHandler.HandleAssessment))
	mux.HandleFunc("POST /api/movements", api("movements_submit", s.submitHandler.HandleMovement))
	mux.HandleFunc("POST /api/injuries", api("injuries_submit", s.submitHandler.HandleInjury))

	mux.HandleFunc("GET /api/athletes/{id}/{kind}", api("athlete_history", s.athleteHandler.HandleHistory))
	mux.HandleFunc("GET /api/dashboard/overview", api("dashboard_overview", s.overviewHandler.HandleOverview))

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.Message()
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps an error chain to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrUnknownKind):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err as a JSON error and logs server-side failures.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// decode reads one JSON document from r's body into v.
func decode(op string, r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewKind(op, ErrTooLarge)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, errors.New("trailing data after JSON body"))
	}
	return nil
}
