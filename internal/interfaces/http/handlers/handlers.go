package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"crudecast/internal/app"
	"crudecast/internal/history"
)

type contextKey string

// RequestIDKey carries the per-request ID through the context.
const RequestIDKey contextKey = "request_id"

// Forecaster is the slice of the inference runner the API needs.
type Forecaster interface {
	Run(ctx context.Context, targetDate time.Time) (*app.Result, error)
	History() ([]history.PredictionRecord, error)
	ModelLoaded() bool
}

// Handlers manages all HTTP endpoint handlers.
type Handlers struct {
	forecaster Forecaster
	version    string
}

// NewHandlers creates the handler set over a forecaster.
func NewHandlers(forecaster Forecaster, version string) *Handlers {
	return &Handlers{forecaster: forecaster, version: version}
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(RequestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}

	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	})
}

// NotFound handles 404 responses.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
