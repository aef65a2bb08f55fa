// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ReadinessProvider reports whether the service accepts traffic.
type ReadinessProvider interface {
	Ready() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	ready ReadinessProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ready ReadinessProvider) *HealthHandler {
	return &HealthHandler{ready: ready}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	if h.ready != nil && !h.ready.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
