package attention

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsSumToOne(t *testing.T) {
	preds := map[string]float64{"US": 2.0, "RU": -1.0, "SA": 1.0}
	weights := Weights(preds)

	var sum float64
	for _, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.InDelta(t, 0.5, weights["US"], 1e-6)
}

func TestWeightsAllZeroPredictionsStayFinite(t *testing.T) {
	weights := Weights(map[string]float64{"US": 0, "RU": 0})
	for entity, w := range weights {
		assert.False(t, math.IsNaN(w), entity)
		assert.Zero(t, w)
	}
}

func TestExplainRanksByWeight(t *testing.T) {
	preds := map[string]float64{"US": 3.0, "RU": -2.0, "SA": 1.0, "CH": 0.5}
	expl := Explain(preds, 2)

	require.Len(t, expl.TopContributors, 2)
	assert.Equal(t, "US", expl.TopContributors[0].Entity)
	assert.Equal(t, "RU", expl.TopContributors[1].Entity)
	assert.Equal(t, 4, expl.NumEntities)

	// Weighted aggregate: sum p_i * |p_i| / sum|p|.
	total := 3.0 + 2.0 + 1.0 + 0.5
	want := (3*3 - 2*2 + 1*1 + 0.5*0.5) / total
	assert.InDelta(t, want, expl.PredictedDelta, 1e-6)
	assert.Greater(t, expl.TotalAbsContribution, 0.0)
}

func TestExplainPercentagesSumToHundred(t *testing.T) {
	expl := Explain(map[string]float64{"US": 1.5, "RU": -0.5, "SA": 0.25}, 0)
	var sum float64
	for _, c := range expl.TopContributors {
		sum += c.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestExplainEmptyAndAllZero(t *testing.T) {
	expl := Explain(nil, 5)
	assert.Zero(t, expl.PredictedDelta)
	assert.Empty(t, expl.TopContributors)

	expl = Explain(map[string]float64{"US": 0}, 5)
	assert.Zero(t, expl.PredictedDelta)
	assert.False(t, math.IsNaN(expl.TopContributors[0].Percentage))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "UP", Direction(0.3))
	assert.Equal(t, "DOWN", Direction(-0.3))
	assert.Equal(t, "FLAT", Direction(0))
}
