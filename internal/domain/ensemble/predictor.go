package ensemble

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// blendWeight is the fixed convex weight applied to the base model when
// blending with the enhanced model.
const blendWeight = 0.5

// Predictor applies a loaded bundle to aligned feature vectors.
type Predictor struct {
	bundle *Bundle
}

// NewPredictor wraps a validated bundle.
func NewPredictor(bundle *Bundle) (*Predictor, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &Predictor{bundle: bundle}, nil
}

// PredictEntity produces the scalar delta prediction for one entity's
// raw (unscaled) feature vector. A specialized per-entity model wins
// over the global path when the bundle carries one.
func (p *Predictor) PredictEntity(entity string, vec []float64) (float64, error) {
	if p.bundle.Capability == GlobalPlusSpecialized {
		if em, ok := p.bundle.Specialized[entity]; ok {
			scaled, err := em.Scaler.Transform(vec)
			if err != nil {
				return 0, fmt.Errorf("entity %s specialized scaler: %w", entity, err)
			}
			return em.Model.Predict(scaled), nil
		}
	}
	return p.predictGlobal(vec)
}

// predictGlobal scales with the global scaler and blends base and
// enhanced models with equal weight. When the enhanced model's fitted
// width disagrees with the prepared width it is skipped with a warning
// rather than erroring: its retraining cadence may lag the base
// model's feature schema.
func (p *Predictor) predictGlobal(vec []float64) (float64, error) {
	scaled, err := p.bundle.Scaler.Transform(vec)
	if err != nil {
		return 0, fmt.Errorf("global scaler: %w", err)
	}

	base := p.bundle.Base.Predict(scaled)
	if p.bundle.Enhanced == nil {
		return base, nil
	}
	if p.bundle.Enhanced.Width() != len(scaled) {
		log.Warn().Int("enhanced_width", p.bundle.Enhanced.Width()).Int("prepared_width", len(scaled)).
			Msg("enhanced model width mismatch, using base model only")
		return base, nil
	}

	enhanced := p.bundle.Enhanced.Predict(scaled)
	return blendWeight*base + (1-blendWeight)*enhanced, nil
}

// PredictAll maps each entity to its prediction. entities[i] labels
// matrix[i]; when an entity appears on several rows the first row wins.
func (p *Predictor) PredictAll(entities []string, matrix [][]float64) (map[string]float64, error) {
	if len(entities) != len(matrix) {
		return nil, fmt.Errorf("entity labels (%d) disagree with matrix rows (%d)", len(entities), len(matrix))
	}

	preds := make(map[string]float64, len(entities))
	for i, entity := range entities {
		if _, done := preds[entity]; done {
			continue
		}
		pred, err := p.PredictEntity(entity, matrix[i])
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", entity, err)
		}
		preds[entity] = pred
	}
	return preds, nil
}
