package contract

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"crudecast/internal/domain/features"
)

// ErrWidthMismatch is returned when the aligned feature matrix cannot
// be made to match the scaler's fitted input width. This is live schema
// drift and must surface, not be silently patched.
var ErrWidthMismatch = errors.New("feature width mismatch after contract alignment")

// Source tags which resolution branch produced the contract.
type Source string

const (
	// SourceScaler means the fitted scaler's recorded input names won.
	SourceScaler Source = "scaler"
	// SourceMetadata means the bundle's declared feature list was used,
	// possibly truncated to the scaler's width.
	SourceMetadata Source = "metadata"
	// SourceDefault means the built-in engineered-column list was used
	// as a last resort.
	SourceDefault Source = "default"
	// SourceDynamic means the contract was derived from the live panel's
	// own columns because the built-in list disagreed with the scaler's
	// fitted width.
	SourceDynamic Source = "dynamic"
)

// Contract is the authoritative ordered feature-name list for a loaded
// model bundle, plus the exact input width its scaler was fitted on.
// Immutable once resolved.
type Contract struct {
	Names     []string
	Width     int
	Source    Source
	Truncated bool
}

// Resolve picks the authoritative feature list from the candidate
// sources in precedence order: the scaler's recorded input names win
// outright; otherwise the declared metadata list, trimmed to the
// scaler's width when longer and rejected when shorter; otherwise the
// built-in default list. When the default list itself disagrees with a
// known scaler width, panelColumns (the live panel's own engineered
// columns minus targets) is the final fallback.
func Resolve(scalerNames []string, scalerWidth int, metadata, panelColumns []string) Contract {
	if len(scalerNames) > 0 {
		return Contract{Names: scalerNames, Width: widthOr(scalerWidth, len(scalerNames)), Source: SourceScaler}
	}

	if len(metadata) > 0 {
		if scalerWidth > 0 && len(metadata) > scalerWidth {
			log.Warn().Int("declared", len(metadata)).Int("expected", scalerWidth).
				Msg("metadata feature list longer than scaler width, truncating")
			return Contract{Names: metadata[:scalerWidth], Width: scalerWidth, Source: SourceMetadata, Truncated: true}
		}
		if scalerWidth > 0 && len(metadata) < scalerWidth {
			log.Warn().Int("declared", len(metadata)).Int("expected", scalerWidth).
				Msg("metadata feature list shorter than scaler width, falling back to default list")
		} else {
			return Contract{Names: metadata, Width: widthOr(scalerWidth, len(metadata)), Source: SourceMetadata}
		}
	}

	def := features.Columns()
	if scalerWidth > 0 && len(def) != scalerWidth && len(panelColumns) == scalerWidth {
		log.Warn().Int("default", len(def)).Int("expected", scalerWidth).
			Msg("default feature list disagrees with scaler width, deriving contract from panel columns")
		return Contract{Names: panelColumns, Width: scalerWidth, Source: SourceDynamic}
	}
	log.Warn().Int("columns", len(def)).Msg("no usable feature contract in bundle, using default feature list")
	return Contract{Names: def, Width: widthOr(scalerWidth, len(def)), Source: SourceDefault}
}

func widthOr(w, fallback int) int {
	if w > 0 {
		return w
	}
	return fallback
}

// Align builds the feature matrix for rows with columns exactly
// matching the contract's ordered name list. Names absent from the live
// panel are injected as zero-valued columns with a warning; rows are
// never dropped. A residual disagreement between the resolved name
// count and the contract width is a fatal configuration error.
func (c Contract) Align(rows []features.Row) ([][]float64, error) {
	if len(c.Names) != c.Width {
		return nil, fmt.Errorf("%w: contract has %d names but scaler expects %d",
			ErrWidthMismatch, len(c.Names), c.Width)
	}

	var missing []string
	if len(rows) > 0 {
		for _, name := range c.Names {
			if _, ok := rows[0].Values[name]; !ok {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		preview := missing
		if len(preview) > 10 {
			preview = preview[:10]
		}
		log.Warn().Int("count", len(missing)).Strs("features", preview).
			Msg("backfilled missing features with zeros")
	}

	matrix := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(c.Names))
		for j, name := range c.Names {
			v, ok := row.Values[name]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			vec[j] = v
		}
		matrix[i] = vec
	}
	return matrix, nil
}
