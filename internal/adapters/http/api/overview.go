package api

import (
	"net/http"

	"github.com/okian/coachboard/pkg/logger"
)

// OverviewHandler serves the coach dashboard summary.
type OverviewHandler struct {
	query  Querier
	logger logger.Logger
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(query Querier, l logger.Logger) *OverviewHandler {
	return &OverviewHandler{query: query, logger: l}
}

// HandleOverview handles GET /api/dashboard/overview.
func (h *OverviewHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.query.Overview(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap("api.dashboard_overview", err))
		return
	}
	writeJSON(w, http.StatusOK, ov)
}
