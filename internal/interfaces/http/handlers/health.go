package handlers

import (
	"net/http"
	"time"
)

// HealthResponse reports process liveness and model residency.
type HealthResponse struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	ModelLoaded bool      `json:"model_loaded"`
	Timestamp   time.Time `json:"timestamp"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Version:     h.version,
		ModelLoaded: h.forecaster.ModelLoaded(),
		Timestamp:   time.Now().UTC(),
	})
}
