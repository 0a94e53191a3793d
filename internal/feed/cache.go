package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crudecast/internal/domain/gkg"
)

// AggregateCache memoizes normalized day aggregates in Redis so a
// backfill re-run does not refetch the day's 96 slices. Absence of the
// cache degrades to a refetch, never to an error.
type AggregateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAggregateCache wraps a Redis client.
func NewAggregateCache(client *redis.Client, ttl time.Duration) *AggregateCache {
	return &AggregateCache{client: client, ttl: ttl}
}

func cacheKey(day time.Time) string {
	return "crudecast:day_aggregates:" + day.Format("20060102")
}

// Get returns the cached aggregates for day, or (nil, false) on miss or
// cache failure.
func (c *AggregateCache) Get(ctx context.Context, day time.Time) ([]gkg.DailyEntityAggregate, bool) {
	data, err := c.client.Get(ctx, cacheKey(day)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("aggregate cache read failed")
		}
		return nil, false
	}

	var aggs []gkg.DailyEntityAggregate
	if err := json.Unmarshal(data, &aggs); err != nil {
		log.Warn().Err(err).Msg("aggregate cache entry corrupt, ignoring")
		return nil, false
	}
	return aggs, true
}

// Put stores the aggregates for day. Failures are logged and dropped.
func (c *AggregateCache) Put(ctx context.Context, day time.Time, aggs []gkg.DailyEntityAggregate) {
	data, err := json.Marshal(aggs)
	if err != nil {
		log.Warn().Err(err).Msg("aggregate cache encode failed")
		return
	}
	if err := c.client.Set(ctx, cacheKey(day), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("aggregate cache write failed")
	}
}

// Ping verifies connectivity at startup.
func (c *AggregateCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
