package api

import (
	"net/http"
	"strings"

	service "github.com/okian/coachboard/internal/app"
	"github.com/okian/coachboard/internal/domain/assessment"
	"github.com/okian/coachboard/internal/domain/injury"
	"github.com/okian/coachboard/internal/domain/movement"
	"github.com/okian/coachboard/pkg/logger"
)

// SubmitHandler serves the evaluate-and-store routes.
type SubmitHandler struct {
	submit Submitter
	logger logger.Logger
}

// NewSubmitHandler creates a new submission handler.
func NewSubmitHandler(submit Submitter, l logger.Logger) *SubmitHandler {
	return &SubmitHandler{submit: submit, logger: l}
}

// HandleAssessment handles POST /api/assessments.
func (h *SubmitHandler) HandleAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_assessment"
	var in assessment.Input
	if err := decode(op, r, &in); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	sub, err := h.submit.SubmitAssessment(r.Context(), idempotencyKey(r), in)
	h.respond(w, r, op, sub, err)
}

// HandleMovement handles POST /api/movements.
func (h *SubmitHandler) HandleMovement(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_movement"
	var in movement.Input
	if err := decode(op, r, &in); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	sub, err := h.submit.SubmitMovement(r.Context(), idempotencyKey(r), in)
	h.respond(w, r, op, sub, err)
}

// HandleInjury handles POST /api/injuries.
func (h *SubmitHandler) HandleInjury(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_injury"
	var in injury.Input
	if err := decode(op, r, &in); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	sub, err := h.submit.SubmitInjury(r.Context(), idempotencyKey(r), in)
	h.respond(w, r, op, sub, err)
}

// respond answers 201 for a new record and 200 for a repeated key.
func (h *SubmitHandler) respond(w http.ResponseWriter, r *http.Request, op string, sub service.Submission, err error) {
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, sub)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(IdempotencyHeader))
}
