package handlers

import (
	"net/http"

	"crudecast/internal/domain/attention"
)

// ContributorsResponse explains the most recent forecast.
type ContributorsResponse struct {
	FeatureDate          string                  `json:"feature_date"`
	PredictedDelta       float64                 `json:"predicted_delta"`
	TotalAbsContribution float64                 `json:"total_abs_contribution"`
	NumEntities          int                     `json:"num_countries"`
	TopContributors      []attention.Contributor `json:"top_contributors"`
}

// Contributors handles GET /contributors: the attention breakdown of
// the latest stored prediction.
func (h *Handlers) Contributors(w http.ResponseWriter, r *http.Request) {
	records, err := h.forecaster.History()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}
	if len(records) == 0 {
		h.writeError(w, r, http.StatusNotFound, "no_predictions",
			"No predictions have been recorded yet")
		return
	}

	latest := records[len(records)-1]
	contributors := latest.TopContributors
	if contributors == nil {
		contributors = []attention.Contributor{}
	}

	h.writeJSON(w, http.StatusOK, ContributorsResponse{
		FeatureDate:          latest.FeatureDate,
		PredictedDelta:       latest.PredictedDelta,
		TotalAbsContribution: latest.TotalAbsContribution,
		NumEntities:          latest.NumEntities,
		TopContributors:      contributors,
	})
}
