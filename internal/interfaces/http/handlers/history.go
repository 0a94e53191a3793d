package handlers

import (
	"net/http"
	"strconv"

	"crudecast/internal/history"
)

// HistoryResponse wraps the persisted prediction log.
type HistoryResponse struct {
	Records []history.PredictionRecord `json:"records"`
	Count   int                        `json:"count"`
}

// History handles GET /history. The optional limit query parameter
// returns only the newest N records.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.forecaster.History()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, r, http.StatusBadRequest, "invalid_limit",
				"Limit must be a positive integer")
			return
		}
		if limit < len(records) {
			records = records[len(records)-limit:]
		}
	}

	if records == nil {
		records = []history.PredictionRecord{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Records: records, Count: len(records)})
}
