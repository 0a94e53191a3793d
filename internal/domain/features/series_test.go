package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShift(t *testing.T) {
	xs := []float64{1, 2, 3, 4}

	out := Shift(xs, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 1.0, out[2])
	assert.Equal(t, 2.0, out[3])

	// Negative shift looks forward, used for targets.
	out = Shift(xs, -1)
	assert.Equal(t, 2.0, out[0])
	assert.Equal(t, 4.0, out[2])
	assert.True(t, math.IsNaN(out[3]))
}

func TestPctChange(t *testing.T) {
	out := PctChange([]float64{100, 110, 99, 0, 50})
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 0.10, out[1], 1e-12)
	assert.InDelta(t, -0.10, out[2], 1e-12)
	assert.InDelta(t, -1.0, out[3], 1e-12)
	// Prior value zero is undefined, not +Inf.
	assert.True(t, math.IsNaN(out[4]))
}

func TestRollingMeanWarmup(t *testing.T) {
	out := RollingMean([]float64{2, 4, 6, 8}, 3, 1)
	assert.InDelta(t, 2.0, out[0], 1e-12)
	assert.InDelta(t, 3.0, out[1], 1e-12)
	assert.InDelta(t, 4.0, out[2], 1e-12)
	assert.InDelta(t, 6.0, out[3], 1e-12)
}

func TestRollingMeanMinPeriods(t *testing.T) {
	out := RollingMean([]float64{1, 2, 3}, 3, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 1.5, out[1], 1e-12)
}

func TestRollingStdSingleObservationIsZero(t *testing.T) {
	out := RollingStd([]float64{5, 7}, 5, 1)
	assert.Zero(t, out[0])
	assert.InDelta(t, math.Sqrt2, out[1], 1e-12)
}

func TestRollingCorrPerfectlyLinear(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 6, 8, 10}
	out := RollingCorr(xs, ys, 5, 2)
	assert.InDelta(t, 1.0, out[4], 1e-12)

	// Anti-correlated.
	zs := []float64{10, 8, 6, 4, 2}
	out = RollingCorr(xs, zs, 5, 2)
	assert.InDelta(t, -1.0, out[4], 1e-12)
}

func TestRollingCorrZeroVarianceIsNaN(t *testing.T) {
	xs := []float64{3, 3, 3, 3}
	ys := []float64{1, 2, 3, 4}
	out := RollingCorr(xs, ys, 4, 2)
	assert.True(t, math.IsNaN(out[3]))
}

func TestRSIMonotonicRampSaturates(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 50 + float64(i)
	}
	out := RSI(prices, rsiPeriod)
	require.Len(t, out, 20)
	assert.Equal(t, 100.0, out[19])
}

func TestRSIFlatWindowIsUndefined(t *testing.T) {
	prices := []float64{60, 60, 60, 60, 60}
	out := RSI(prices, rsiPeriod)
	assert.True(t, math.IsNaN(out[4]))
}

func TestRSIBalancedMovesIsFifty(t *testing.T) {
	// Alternating +1/-1 deltas: average gain equals average loss.
	prices := []float64{50, 51, 50, 51, 50, 51, 50, 51, 50}
	out := RSI(prices, 8)
	assert.InDelta(t, 50.0, out[8], 1e-9)
}
