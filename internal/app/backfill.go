package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"crudecast/internal/history"
)

// maxBackfillDays bounds one backfill invocation so an over-wide range
// cannot grind through months of feed slices.
const maxBackfillDays = 60

// BackfillSummary reports what one backfill pass accomplished.
type BackfillSummary struct {
	DaysRequested   int
	DaysProcessed   int
	DaysSkipped     int
	OutcomesUpdated int
}

// Backfill replays the daily pipeline and inference over a range of
// past business days, oldest first so each run can settle the outcome
// of the one before it.
type Backfill struct {
	pipeline  *Pipeline
	inference *Inference
}

func NewBackfill(pipeline *Pipeline, inference *Inference) *Backfill {
	return &Backfill{pipeline: pipeline, inference: inference}
}

// Run processes every business day in [from, to]. A failed day is
// logged and skipped; the pass keeps going so one gap in the feed does
// not abort the whole range.
func (b *Backfill) Run(ctx context.Context, from, to time.Time) (*BackfillSummary, error) {
	from = history.ToBusinessDay(from.Truncate(24 * time.Hour))
	to = to.Truncate(24 * time.Hour)
	if to.Before(from) {
		return nil, fmt.Errorf("backfill range is empty: %s after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxBackfillDays {
		return nil, fmt.Errorf("backfill range of %d days exceeds the %d day limit", days, maxBackfillDays)
	}

	summary := &BackfillSummary{}
	for day := from; !day.After(to); day = history.NextBusinessDay(day) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.DaysRequested++

		res, err := b.runDay(ctx, day)
		if err != nil {
			summary.DaysSkipped++
			log.Warn().Err(err).Str("day", day.Format("2006-01-02")).Msg("backfill day failed, skipping")
			continue
		}
		summary.DaysProcessed++
		summary.OutcomesUpdated += res.UpdatedOutcomes
	}

	log.Info().Int("requested", summary.DaysRequested).Int("processed", summary.DaysProcessed).
		Int("skipped", summary.DaysSkipped).Int("outcomes_updated", summary.OutcomesUpdated).
		Msg("backfill complete")
	return summary, nil
}

func (b *Backfill) runDay(ctx context.Context, day time.Time) (*Result, error) {
	path, err := b.pipeline.RunDaily(ctx, day)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		return nil, fmt.Errorf("pipeline for %s: %w", day.Format("2006-01-02"), err)
	}
	return b.inference.RunArtifact(ctx, path, day)
}
