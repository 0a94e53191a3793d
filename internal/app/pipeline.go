package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"crudecast/internal/blob"
	"crudecast/internal/domain/gkg"
	"crudecast/internal/domain/timeline"
	"crudecast/internal/feed"
	"crudecast/internal/metrics"
	"crudecast/internal/prices"
)

// ErrNoData signals that the pipeline produced an empty panel for the
// requested day: an unrecoverable condition for that invocation.
var ErrNoData = errors.New("pipeline produced no data")

// aggregateDaysBack is how many trailing days of feed aggregates feed
// one daily artifact, so lag and window features have history to work
// with.
const aggregateDaysBack = 30

// priceDaysBack bounds the price range fetched per run.
const priceDaysBack = 90

// Pipeline is the daily ingestion path: collect feed slices, normalize
// per entity, align against reference prices, and persist the aligned
// panel artifact.
type Pipeline struct {
	fetcher       feed.SliceFetcher
	prices        prices.Fetcher
	normalizer    *gkg.Normalizer
	store         blob.Store
	processedPath string
	cache         *feed.AggregateCache
}

// NewPipeline assembles the pipeline from its collaborators. cache may
// be nil.
func NewPipeline(fetcher feed.SliceFetcher, priceFetcher prices.Fetcher, normalizer *gkg.Normalizer,
	store blob.Store, processedPath string, cache *feed.AggregateCache) *Pipeline {
	return &Pipeline{
		fetcher:       fetcher,
		prices:        priceFetcher,
		normalizer:    normalizer,
		store:         store,
		processedPath: processedPath,
		cache:         cache,
	}
}

// RunDaily builds and persists the aligned panel artifact for
// targetDate, returning the artifact path.
func (p *Pipeline) RunDaily(ctx context.Context, targetDate time.Time) (string, error) {
	targetDate = targetDate.Truncate(24 * time.Hour)
	log.Info().Str("target", targetDate.Format("2006-01-02")).Msg("running daily pipeline")

	series, err := p.prices.FetchDaily(ctx, targetDate.AddDate(0, 0, -priceDaysBack), targetDate)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return "", fmt.Errorf("fetch price series: %w", err)
	}
	log.Info().Int("days", len(series)).Msg("fetched price series")

	var aggs []gkg.DailyEntityAggregate
	for daysAgo := aggregateDaysBack; daysAgo >= 0; daysAgo-- {
		day := targetDate.AddDate(0, 0, -daysAgo)
		dayAggs, err := p.aggregatesForDay(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			// A single bad day is skippable; the rest still accumulates.
			log.Warn().Err(err).Str("day", day.Format("2006-01-02")).Msg("day aggregation failed, skipping")
			continue
		}
		aggs = append(aggs, dayAggs...)
	}
	if len(aggs) == 0 {
		metrics.PipelineRuns.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: no entity aggregates for %s", ErrNoData, targetDate.Format("2006-01-02"))
	}

	panel := timeline.Align(aggs, series, timeline.JoinForwardFill)
	if len(panel) == 0 {
		metrics.PipelineRuns.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: alignment produced no rows", ErrNoData)
	}

	path, err := writePanelArtifact(p.store, p.processedPath, targetDate, panel)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	log.Info().Str("artifact", path).Int("rows", len(panel)).
		Int("entities", len(panel.Entities())).Msg("daily pipeline complete")
	return path, nil
}

func (p *Pipeline) aggregatesForDay(ctx context.Context, day time.Time) ([]gkg.DailyEntityAggregate, error) {
	if p.cache != nil {
		if aggs, ok := p.cache.Get(ctx, day); ok {
			log.Debug().Str("day", day.Format("2006-01-02")).Msg("day aggregates from cache")
			return aggs, nil
		}
	}

	records, err := feed.CollectDay(ctx, p.fetcher, day)
	if err != nil {
		return nil, err
	}
	metrics.FeedSlices.WithLabelValues("ok").Add(float64(len(records)))

	aggs := p.normalizer.Normalize(day, records)
	if p.cache != nil {
		p.cache.Put(ctx, day, aggs)
	}
	return aggs, nil
}
