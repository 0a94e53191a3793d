package history

import (
	"time"

	"crudecast/internal/domain/attention"
)

// DateFormat is the wire format for record dates.
const DateFormat = "2006-01-02"

// PredictionRecord is one persisted forecast, keyed by FeatureDate (the
// day the inputs describe). Created once at inference time; the actual
// outcome fields are filled in place when the target date is reached.
type PredictionRecord struct {
	FeatureDate          string                  `json:"feature_date" db:"feature_date"`
	PredictionForDate    string                  `json:"prediction_for_date" db:"prediction_for_date"`
	ReferenceClose       float64                 `json:"reference_close" db:"reference_close"`
	PredictedDelta       float64                 `json:"predicted_delta" db:"predicted_delta"`
	PredictedClose       float64                 `json:"predicted_close" db:"predicted_close"`
	TotalAbsContribution float64                 `json:"total_abs_contribution" db:"total_abs_contribution"`
	NumEntities          int                     `json:"num_countries" db:"num_countries"`
	TopContributors      []attention.Contributor `json:"top_contributors" db:"-"`
	GeneratedAt          string                  `json:"prediction_generated_at" db:"generated_at"`

	ActualClose      *float64 `json:"actual_close,omitempty" db:"actual_close"`
	ActualDelta      *float64 `json:"actual_delta,omitempty" db:"actual_delta"`
	ErrorDelta       *float64 `json:"error_delta,omitempty" db:"error_delta"`
	ErrorPrice       *float64 `json:"error_price,omitempty" db:"error_price"`
	ActualRecordedAt string   `json:"actual_recorded_at,omitempty" db:"actual_recorded_at"`
}

// NextBusinessDay returns the first weekday strictly after day.
func NextBusinessDay(day time.Time) time.Time {
	next := day.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ToBusinessDay rolls day back to the most recent weekday.
func ToBusinessDay(day time.Time) time.Time {
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
