package ensemble

import "fmt"

// Scaler is a fitted robust input scaler: (x - center) / scale per
// column. FeatureNames is the optional recorded input-name list; when
// present it is the strongest feature-contract source.
type Scaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Center       []float64 `json:"center"`
	Scale        []float64 `json:"scale"`
}

// Width returns the input width the scaler was fitted on.
func (s *Scaler) Width() int {
	return len(s.Center)
}

// Transform scales one feature vector. The vector width must match the
// fitted width exactly.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != s.Width() {
		return nil, fmt.Errorf("scaler expects %d features, got %d", s.Width(), len(vec))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		sc := s.Scale[i]
		if sc == 0 {
			sc = 1
		}
		out[i] = (v - s.Center[i]) / sc
	}
	return out, nil
}

// Validate rejects malformed fitted state.
func (s *Scaler) Validate() error {
	if len(s.Center) == 0 {
		return fmt.Errorf("scaler has no fitted center")
	}
	if len(s.Center) != len(s.Scale) {
		return fmt.Errorf("scaler center/scale width mismatch: %d vs %d", len(s.Center), len(s.Scale))
	}
	if len(s.FeatureNames) > 0 && len(s.FeatureNames) != len(s.Center) {
		return fmt.Errorf("scaler feature names width %d disagrees with fitted width %d",
			len(s.FeatureNames), len(s.Center))
	}
	return nil
}
