package history

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Reconciler applies a new prediction record to the persisted history:
// outcome backfill first, then an idempotent upsert, then sort and
// truncation to the retention window.
type Reconciler struct {
	window int
}

// NewReconciler creates a reconciler retaining the most recent window
// records.
func NewReconciler(window int) *Reconciler {
	if window <= 0 {
		window = 120
	}
	return &Reconciler{window: window}
}

// Apply mutates records with rec and returns the reconciled history
// plus the number of prior records that gained a realized outcome.
//
// Backfill runs before the upsert: any prior record targeting rec's
// feature date, with its outcome still unset, learns the realized
// close from rec's reference price. The upsert then overwrites any
// existing record for the same feature date in place, so reprocessing
// a day is idempotent.
func (r *Reconciler) Apply(records []PredictionRecord, rec PredictionRecord) ([]PredictionRecord, int) {
	updated := 0
	for i := range records {
		past := &records[i]
		if past.PredictionForDate != rec.FeatureDate || past.ActualClose != nil {
			continue
		}
		actualClose := rec.ReferenceClose
		actualDelta := actualClose - past.ReferenceClose
		errorDelta := past.PredictedDelta - actualDelta
		errorPrice := past.PredictedClose - actualClose

		past.ActualClose = &actualClose
		past.ActualDelta = &actualDelta
		past.ErrorDelta = &errorDelta
		past.ErrorPrice = &errorPrice
		past.ActualRecordedAt = rec.GeneratedAt
		updated++
	}
	if updated > 0 {
		log.Info().Int("records", updated).Str("feature_date", rec.FeatureDate).
			Msg("backfilled realized outcomes")
	}

	replaced := false
	for i := range records {
		if records[i].FeatureDate == rec.FeatureDate {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].FeatureDate < records[j].FeatureDate
	})
	if len(records) > r.window {
		records = records[len(records)-r.window:]
	}
	return records, updated
}
