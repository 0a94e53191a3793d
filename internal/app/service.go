package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crudecast/internal/blob"
	"crudecast/internal/config"
	"crudecast/internal/domain/gkg"
	"crudecast/internal/feed"
	"crudecast/internal/history"
	"crudecast/internal/models"
	"crudecast/internal/prices"
)

// Service is the composition root: every command builds one from the
// resolved config and picks the runner it needs.
type Service struct {
	Cfg       *config.Config
	Store     blob.Store
	Pipeline  *Pipeline
	Inference *Inference
	Backfill  *Backfill

	pgStore *history.PostgresStore
}

// NewService wires all collaborators. The Redis cache and Postgres
// mirror are optional; when unreachable or unconfigured the service
// runs without them.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	store := blob.NewFSStore(cfg.Blob.BaseDir)

	fetcher := feed.NewHTTPClient(cfg.Feed.BaseURL,
		time.Duration(cfg.Feed.RequestTimeout)*time.Second, cfg.Feed.RatePerSecond)
	priceClient := prices.NewClient(cfg.Prices.BaseURL, cfg.Prices.APIKey,
		time.Duration(cfg.Prices.RequestTimeout)*time.Second)
	normalizer := gkg.NewNormalizer(cfg.Feed.MaxThemes)

	var cache *feed.AggregateCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c := feed.NewAggregateCache(client, time.Duration(cfg.Redis.TTLHours)*time.Hour)
		if err := c.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, caching disabled")
		} else {
			cache = c
			log.Info().Str("addr", cfg.Redis.Addr).Msg("day-aggregate cache enabled")
		}
	}

	svc := &Service{Cfg: cfg, Store: store}

	histStore := history.NewBlobStore(store, cfg.Blob.ProcessedPath+"/history.json")
	var mirror history.Store
	if cfg.DB.DSN != "" {
		pg, err := history.NewPostgresStore(cfg.DB.DSN, 10*time.Second)
		if err != nil {
			log.Warn().Err(err).Msg("postgres unreachable, history mirror disabled")
		} else if err := pg.Migrate(ctx); err != nil {
			log.Warn().Err(err).Msg("postgres migration failed, history mirror disabled")
			pg.Close()
		} else {
			mirror = pg
			svc.pgStore = pg
			log.Info().Msg("postgres history mirror enabled")
		}
	}

	loader := models.NewLoader(store, cfg.Blob.ModelsPath, cfg.Models.RunID, cfg.Models.CacheDir)
	reconciler := history.NewReconciler(cfg.History.Window)

	svc.Pipeline = NewPipeline(fetcher, priceClient, normalizer, store, cfg.Blob.ProcessedPath, cache)
	svc.Inference = NewInference(store, cfg.Blob.ProcessedPath, loader, histStore, mirror,
		reconciler, cfg.Models.TopK)
	svc.Backfill = NewBackfill(svc.Pipeline, svc.Inference)
	return svc, nil
}

// Close releases held connections.
func (s *Service) Close() {
	if s.pgStore != nil {
		s.pgStore.Close()
	}
}
