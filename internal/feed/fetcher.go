package feed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"crudecast/internal/domain/gkg"
)

// ErrNotFound signals that no slice exists for the requested timestamp,
// distinct from transient failure. Callers treat it as an empty
// contribution to the day.
var ErrNotFound = errors.New("feed slice not found")

// SliceFetcher retrieves one timestamp-addressed batch of raw records.
type SliceFetcher interface {
	FetchSlice(ctx context.Context, ts time.Time) ([]gkg.Record, error)
}

// SliceFetcherFunc adapts a plain function to SliceFetcher.
type SliceFetcherFunc func(ctx context.Context, ts time.Time) ([]gkg.Record, error)

func (f SliceFetcherFunc) FetchSlice(ctx context.Context, ts time.Time) ([]gkg.Record, error) {
	return f(ctx, ts)
}

// sliceInterval is the feed's publication cadence.
const sliceInterval = 15 * time.Minute

// CollectDay accumulates every slice of one calendar day. A missing
// slice contributes nothing; a transient failure skips that slice with
// a warning while the rest of the day still accumulates.
func CollectDay(ctx context.Context, fetcher SliceFetcher, day time.Time) ([]gkg.Record, error) {
	day = day.Truncate(24 * time.Hour)

	var records []gkg.Record
	fetched, missing, failed := 0, 0, 0

	for ts := day; ts.Before(day.AddDate(0, 0, 1)); ts = ts.Add(sliceInterval) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := fetcher.FetchSlice(ctx, ts)
		switch {
		case errors.Is(err, ErrNotFound):
			missing++
		case err != nil:
			failed++
			log.Warn().Err(err).Time("slice", ts).Msg("feed slice fetch failed, skipping")
		default:
			fetched++
			records = append(records, batch...)
		}
	}

	log.Info().Str("day", day.Format("2006-01-02")).
		Int("fetched", fetched).Int("missing", missing).Int("failed", failed).
		Int("records", len(records)).
		Msg("collected feed slices")
	return records, nil
}
