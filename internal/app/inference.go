package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"crudecast/internal/blob"
	"crudecast/internal/domain/attention"
	"crudecast/internal/domain/contract"
	"crudecast/internal/domain/ensemble"
	"crudecast/internal/domain/features"
	"crudecast/internal/history"
	"crudecast/internal/metrics"
	"crudecast/internal/models"
)

// Result is the service-boundary forecast shape.
type Result struct {
	Date                 string                  `json:"date"`
	PredictedDelta       float64                 `json:"predicted_delta"`
	PredictedDirection   string                  `json:"predicted_direction"`
	TopContributors      []attention.Contributor `json:"top_contributors"`
	TotalAbsContribution float64                 `json:"total_abs_contribution"`
	NumEntities          int                     `json:"num_countries"`
	ModelVersion         string                  `json:"model_version"`

	Record          history.PredictionRecord `json:"-"`
	HistoryLength   int                      `json:"-"`
	UpdatedOutcomes int                      `json:"-"`
}

// Inference executes one forecast over the latest (or a requested)
// aligned artifact and reconciles the prediction history.
type Inference struct {
	store         blob.Store
	processedPath string
	loader        *models.Loader
	histStore     history.Store
	mirror        history.Store
	reconciler    *history.Reconciler
	topK          int
	now           func() time.Time
}

// NewInference assembles the inference runner. mirror may be nil.
func NewInference(store blob.Store, processedPath string, loader *models.Loader,
	histStore history.Store, mirror history.Store, reconciler *history.Reconciler, topK int) *Inference {
	return &Inference{
		store:         store,
		processedPath: processedPath,
		loader:        loader,
		histStore:     histStore,
		mirror:        mirror,
		reconciler:    reconciler,
		topK:          topK,
		now:           time.Now,
	}
}

// ModelLoaded reports whether the bundle is resident, for health
// probes; it never triggers a load.
func (inf *Inference) ModelLoaded() bool {
	return inf.loader.Loaded()
}

// History returns the persisted prediction history.
func (inf *Inference) History() ([]history.PredictionRecord, error) {
	return inf.histStore.Load()
}

// Run forecasts from the newest aligned artifact. When targetDate is
// non-zero it must match the artifact's latest feature date; a
// disagreement is a fatal error rather than a silent stale forecast.
func (inf *Inference) Run(ctx context.Context, targetDate time.Time) (*Result, error) {
	path, err := blob.LatestAlignedArtifact(inf.store, inf.processedPath)
	if err != nil {
		metrics.InferenceRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("locate aligned artifact: %w", err)
	}
	return inf.RunArtifact(ctx, path, targetDate)
}

// RunArtifact forecasts from a specific aligned artifact, used by the
// backfill path where each day has its own panel.
func (inf *Inference) RunArtifact(ctx context.Context, path string, targetDate time.Time) (*Result, error) {
	start := inf.now()
	res, err := inf.run(ctx, path, targetDate)
	metrics.InferenceDuration.Observe(inf.now().Sub(start).Seconds())
	if err != nil {
		metrics.InferenceRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.InferenceRuns.WithLabelValues("ok").Inc()
	return res, nil
}

func (inf *Inference) run(ctx context.Context, path string, targetDate time.Time) (*Result, error) {
	panel, err := readPanelArtifact(inf.store, path)
	if err != nil {
		return nil, err
	}
	if len(panel) == 0 {
		return nil, fmt.Errorf("%w: artifact %s is empty", ErrNoData, path)
	}

	feats := features.Engineer(panel)

	latest, ok := features.LatestDate(feats)
	if !ok {
		return nil, fmt.Errorf("%w: no feature rows in %s", ErrNoData, path)
	}
	if !targetDate.IsZero() {
		want := targetDate.Truncate(24 * time.Hour)
		if !latest.Equal(want) {
			return nil, fmt.Errorf("latest data date %s does not match requested target %s",
				latest.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}

	dayRows := features.FilterDate(feats, latest)
	if len(dayRows) == 0 {
		return nil, fmt.Errorf("%w: no rows for target date %s", ErrNoData, latest.Format("2006-01-02"))
	}
	referenceClose := dayRows[0].Value("wti_price")

	bundle, err := inf.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load model bundle: %w", err)
	}

	c := contract.Resolve(bundle.Scaler.FeatureNames, bundle.Scaler.Width(),
		bundle.MetadataFeatures, features.DynamicColumns(dayRows[0]))
	log.Debug().Str("source", string(c.Source)).Int("width", c.Width).
		Bool("truncated", c.Truncated).Msg("feature contract resolved")

	matrix, err := c.Align(dayRows)
	if err != nil {
		return nil, err
	}
	entities := make([]string, len(dayRows))
	for i, r := range dayRows {
		entities[i] = r.Entity
	}

	predictor, err := ensemble.NewPredictor(bundle)
	if err != nil {
		return nil, err
	}
	predictions, err := predictor.PredictAll(entities, matrix)
	if err != nil {
		return nil, err
	}

	expl := attention.Explain(predictions, inf.topK)
	predictedClose := referenceClose + expl.PredictedDelta

	record := history.PredictionRecord{
		FeatureDate:          latest.Format(history.DateFormat),
		PredictionForDate:    history.NextBusinessDay(latest).Format(history.DateFormat),
		ReferenceClose:       referenceClose,
		PredictedDelta:       expl.PredictedDelta,
		PredictedClose:       predictedClose,
		TotalAbsContribution: expl.TotalAbsContribution,
		NumEntities:          expl.NumEntities,
		TopContributors:      expl.TopContributors,
		GeneratedAt:          inf.now().UTC().Format(time.RFC3339),
	}

	records, err := inf.histStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	records, updated := inf.reconciler.Apply(records, record)
	if err := inf.histStore.Save(records); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	metrics.HistoryRecords.Set(float64(len(records)))

	if inf.mirror != nil {
		if err := inf.mirror.Save(records); err != nil {
			log.Warn().Err(err).Msg("history mirror save failed")
		}
	}

	log.Info().Str("feature_date", record.FeatureDate).
		Float64("predicted_delta", record.PredictedDelta).
		Int("entities", expl.NumEntities).Int("updated_outcomes", updated).
		Msg("inference complete")

	return &Result{
		Date:                 record.FeatureDate,
		PredictedDelta:       expl.PredictedDelta,
		PredictedDirection:   attention.Direction(expl.PredictedDelta),
		TopContributors:      expl.TopContributors,
		TotalAbsContribution: expl.TotalAbsContribution,
		NumEntities:          expl.NumEntities,
		ModelVersion:         bundle.RunID,
		Record:               record,
		HistoryLength:        len(records),
		UpdatedOutcomes:      updated,
	}, nil
}
