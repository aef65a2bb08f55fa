package api

import (
	"net/http"
	"strings"

	"github.com/okian/coachboard/internal/adapters/repository"
	"github.com/okian/coachboard/pkg/logger"
)

// AthleteHandler serves per-athlete history.
type AthleteHandler struct {
	query  Querier
	logger logger.Logger
}

// NewAthleteHandler creates a new athlete history handler.
func NewAthleteHandler(query Querier, l logger.Logger) *AthleteHandler {
	return &AthleteHandler{query: query, logger: l}
}

type historyResponse struct {
	AthleteID string              `json:"athleteId"`
	Kind      repository.Kind     `json:"kind"`
	Records   []repository.Record `json:"records"`
}

// HandleHistory handles GET /api/athletes/{id}/{kind}, newest first.
func (h *AthleteHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.athlete_history"
	id := strings.TrimSpace(r.PathValue("id"))
	kind, err := repository.ParseKind(r.PathValue("kind"))
	if err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrNotFound, err))
		return
	}
	recs, err := h.query.History(r.Context(), id, kind)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	if recs == nil {
		recs = []repository.Record{}
	}
	writeJSON(w, http.StatusOK, historyResponse{AthleteID: id, Kind: kind, Records: recs})
}
