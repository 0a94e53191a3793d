package ensemble

import "fmt"

// Regressor is a fitted black-box predictor over a scaled feature
// vector with a fixed expected input width.
type Regressor interface {
	Predict(vec []float64) float64
	Width() int
}

// LinearModel is a regressor backed by fitted coefficients. Trained
// bundles serialize their models into this form for serving.
type LinearModel struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Predict evaluates the linear form over vec. Widths beyond the fitted
// coefficient count are ignored; shorter vectors are padded with zeros
// implicitly by the loop bound.
func (m *LinearModel) Predict(vec []float64) float64 {
	out := m.Intercept
	n := len(m.Coef)
	if len(vec) < n {
		n = len(vec)
	}
	for i := 0; i < n; i++ {
		out += m.Coef[i] * vec[i]
	}
	return out
}

// Width returns the fitted input width.
func (m *LinearModel) Width() int {
	return len(m.Coef)
}

// Capability is decided once at bundle load time; prediction dispatches
// on it rather than probing for per-entity models on every call.
type Capability string

const (
	// GlobalOnly bundles carry only the global base (and optionally
	// enhanced) models.
	GlobalOnly Capability = "global_only"
	// GlobalPlusSpecialized bundles additionally carry per-entity
	// scaler/model pairs preferred over the global path.
	GlobalPlusSpecialized Capability = "global_plus_specialized"
)

// EntityModel is a specialized per-entity scaler/regressor pair.
type EntityModel struct {
	Scaler *Scaler
	Model  Regressor
}

// Bundle is a loaded model bundle: read-only after load, shared across
// inference requests within a process.
type Bundle struct {
	RunID       string
	Scaler      *Scaler
	Base        Regressor
	Enhanced    Regressor
	Specialized map[string]EntityModel
	// MetadataFeatures is the bundle's declared ordered feature list,
	// when the training run recorded one.
	MetadataFeatures []string
	Capability       Capability
}

// Validate checks the bundle is servable.
func (b *Bundle) Validate() error {
	if b.Scaler == nil {
		return fmt.Errorf("bundle %s has no fitted scaler", b.RunID)
	}
	if err := b.Scaler.Validate(); err != nil {
		return fmt.Errorf("bundle %s: %w", b.RunID, err)
	}
	if b.Base == nil {
		return fmt.Errorf("bundle %s has no base model", b.RunID)
	}
	if b.Capability == GlobalPlusSpecialized && len(b.Specialized) == 0 {
		return fmt.Errorf("bundle %s tagged specialized but carries no entity models", b.RunID)
	}
	return nil
}

// DecideCapability tags the bundle from its loaded contents.
func DecideCapability(specialized map[string]EntityModel) Capability {
	if len(specialized) > 0 {
		return GlobalPlusSpecialized
	}
	return GlobalOnly
}
