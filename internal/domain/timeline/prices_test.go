package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestForwardFillIsCausal(t *testing.T) {
	s := PriceSeries{
		{Date: day("2026-03-02"), WTI: math.NaN(), Brent: math.NaN()},
		{Date: day("2026-03-03"), WTI: 70.0, Brent: 74.0},
		{Date: day("2026-03-04"), WTI: math.NaN(), Brent: math.NaN()},
		{Date: day("2026-03-05"), WTI: math.NaN(), Brent: 75.5},
		{Date: day("2026-03-06"), WTI: 71.2, Brent: math.NaN()},
	}
	s.ForwardFill()

	// The day before the first observation stays missing.
	assert.True(t, math.IsNaN(s[0].WTI))
	assert.True(t, math.IsNaN(s[0].Brent))

	assert.Equal(t, 70.0, s[2].WTI)
	assert.Equal(t, 74.0, s[2].Brent)
	assert.Equal(t, 70.0, s[3].WTI)
	assert.Equal(t, 75.5, s[3].Brent)
	assert.Equal(t, 71.2, s[4].WTI)
	assert.Equal(t, 75.5, s[4].Brent)
}

func TestLatestAtNeverLooksAhead(t *testing.T) {
	s := PriceSeries{
		{Date: day("2026-03-03"), WTI: 70.0, Brent: 74.0},
		{Date: day("2026-03-06"), WTI: 72.0, Brent: 76.0},
	}

	pp, ok := s.LatestAt(day("2026-03-05"))
	require.True(t, ok)
	assert.Equal(t, 70.0, pp.WTI)

	_, ok = s.LatestAt(day("2026-03-02"))
	assert.False(t, ok)

	pp, ok = s.LatestAt(day("2026-03-06"))
	require.True(t, ok)
	assert.Equal(t, 72.0, pp.WTI)
}
