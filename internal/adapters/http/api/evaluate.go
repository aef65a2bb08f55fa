package api

import (
	"net/http"

	"github.com/okian/coachboard/internal/domain/assessment"
	"github.com/okian/coachboard/internal/domain/injury"
	"github.com/okian/coachboard/internal/domain/movement"
	"github.com/okian/coachboard/pkg/logger"
)

// EvaluateHandler serves the stateless evaluation routes.
type EvaluateHandler struct {
	eval   Evaluator
	logger logger.Logger
}

// NewEvaluateHandler creates a new evaluation handler.
func NewEvaluateHandler(eval Evaluator, l logger.Logger) *EvaluateHandler {
	return &EvaluateHandler{eval: eval, logger: l}
}

// HandleAssessment handles POST /api/assessments/evaluate.
func (h *EvaluateHandler) HandleAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_assessment"
	var in assessment.Input
	if err := decode(op, r, &in); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	out, err := h.eval.EvaluateAssessment(r.Context(), in)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleMovement handles POST /api/movements/evaluate.
func (h *EvaluateHandler) HandleMovement(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_movement"
	var in movement.Input
	if err := decode(op, r, &in); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	out, err := h.eval.EvaluateMovement(r.Context(), in)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleInjury handles POST /api/injuries/evaluate.
func (h *EvaluateHandler) HandleInjury(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_injury"
	var in injury.Input
	if err := decode(op, r, &in); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	out, err := h.eval.EvaluateInjury(r.Context(), in)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleInjuryRecord handles POST /api/injuries/evaluate-record, which takes
// a backend injury row with severity and status labels.
func (h *EvaluateHandler) HandleInjuryRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_injury_record"
	var rec injury.Record
	if err := decode(op, r, &rec); err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	out, err := h.eval.EvaluateInjuryRecord(r.Context(), rec)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
