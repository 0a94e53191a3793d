package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityScaler(width int) *Scaler {
	center := make([]float64, width)
	scale := make([]float64, width)
	for i := range scale {
		scale[i] = 1
	}
	return &Scaler{Center: center, Scale: scale}
}

func TestScalerTransform(t *testing.T) {
	s := &Scaler{Center: []float64{10, 0}, Scale: []float64{2, 0}}

	out, err := s.Transform([]float64{14, 3})
	require.NoError(t, err)
	// Zero scale degrades to pass-through, not a division blowup.
	assert.Equal(t, []float64{2, 3}, out)

	_, err = s.Transform([]float64{1})
	assert.Error(t, err)
}

func TestLinearModelPredict(t *testing.T) {
	m := &LinearModel{Coef: []float64{2, -1}, Intercept: 0.5}
	assert.InDelta(t, 2*3-4+0.5, m.Predict([]float64{3, 4}), 1e-12)
}

func TestPredictGlobalBlendsBaseAndEnhanced(t *testing.T) {
	bundle := &Bundle{
		RunID:      "run_test",
		Scaler:     identityScaler(2),
		Base:       &LinearModel{Coef: []float64{1, 0}},
		Enhanced:   &LinearModel{Coef: []float64{0, 1}},
		Capability: GlobalOnly,
	}
	p, err := NewPredictor(bundle)
	require.NoError(t, err)

	pred, err := p.PredictEntity("US", []float64{4, 8})
	require.NoError(t, err)
	assert.InDelta(t, 0.5*4+0.5*8, pred, 1e-12)
}

func TestPredictGlobalEnhancedWidthMismatchUsesBaseOnly(t *testing.T) {
	bundle := &Bundle{
		RunID:      "run_test",
		Scaler:     identityScaler(2),
		Base:       &LinearModel{Coef: []float64{1, 1}},
		Enhanced:   &LinearModel{Coef: []float64{1, 1, 1}},
		Capability: GlobalOnly,
	}
	p, err := NewPredictor(bundle)
	require.NoError(t, err)

	pred, err := p.PredictEntity("US", []float64{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pred, 1e-12)
}

func TestSpecializedModelWinsForItsEntity(t *testing.T) {
	specialized := map[string]EntityModel{
		"RU": {
			Scaler: identityScaler(2),
			Model:  &LinearModel{Coef: []float64{0, 0}, Intercept: -7},
		},
	}
	bundle := &Bundle{
		RunID:       "run_test",
		Scaler:      identityScaler(2),
		Base:        &LinearModel{Coef: []float64{1, 1}},
		Specialized: specialized,
		Capability:  DecideCapability(specialized),
	}
	require.Equal(t, GlobalPlusSpecialized, bundle.Capability)

	p, err := NewPredictor(bundle)
	require.NoError(t, err)

	preds, err := p.PredictAll([]string{"RU", "US"}, [][]float64{{1, 2}, {1, 2}})
	require.NoError(t, err)
	assert.InDelta(t, -7.0, preds["RU"], 1e-12)
	assert.InDelta(t, 3.0, preds["US"], 1e-12)
}

func TestPredictAllFirstRowWins(t *testing.T) {
	bundle := &Bundle{
		RunID:      "run_test",
		Scaler:     identityScaler(1),
		Base:       &LinearModel{Coef: []float64{1}},
		Capability: GlobalOnly,
	}
	p, err := NewPredictor(bundle)
	require.NoError(t, err)

	preds, err := p.PredictAll([]string{"US", "US"}, [][]float64{{5}, {9}})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, preds["US"], 1e-12)

	_, err = p.PredictAll([]string{"US"}, nil)
	assert.Error(t, err)
}

func TestBundleValidate(t *testing.T) {
	b := &Bundle{RunID: "r", Scaler: identityScaler(1), Base: &LinearModel{Coef: []float64{1}}}
	assert.NoError(t, b.Validate())

	b.Capability = GlobalPlusSpecialized
	assert.Error(t, b.Validate())

	b = &Bundle{RunID: "r", Base: &LinearModel{Coef: []float64{1}}}
	assert.Error(t, b.Validate())
}
