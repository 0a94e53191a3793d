package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"crudecast/internal/app"
	"crudecast/internal/blob"
	"crudecast/internal/history"
)

type predictRequest struct {
	Date string `json:"date"`
}

// Predict handles POST /predict. The optional body {"date":"YYYY-MM-DD"}
// pins the run to a specific feature date; without it the newest
// artifact decides.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, http.StatusBadRequest, "invalid_body",
			"Request body must be empty or a JSON object")
		return
	}

	var targetDate time.Time
	if req.Date != "" {
		parsed, err := time.Parse(history.DateFormat, req.Date)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_date",
				"Date must be in YYYY-MM-DD format")
			return
		}
		targetDate = parsed
	}

	res, err := h.forecaster.Run(r.Context(), targetDate)
	if err != nil {
		switch {
		case errors.Is(err, blob.ErrNotFound), errors.Is(err, app.ErrNoData):
			h.writeError(w, r, http.StatusNotFound, "no_data",
				"No aligned data artifact is available for prediction")
		default:
			h.writeError(w, r, http.StatusInternalServerError, "prediction_failed", err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}
