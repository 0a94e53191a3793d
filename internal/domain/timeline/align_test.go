package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudecast/internal/domain/gkg"
)

func sampleAggs() []gkg.DailyEntityAggregate {
	return []gkg.DailyEntityAggregate{
		{Entity: "US", Date: day("2026-03-03"), AvgTone: 1.0, MentionCount: 3,
			ThemeCounts: map[gkg.Category]int{gkg.CategoryEnergy: 2}},
		{Entity: "US", Date: day("2026-03-07"), AvgTone: -0.5, MentionCount: 1},
		{Entity: "RU", Date: day("2026-03-03"), AvgTone: 2.0, MentionCount: 5,
			ThemeCounts: map[gkg.Category]int{gkg.CategorySanctions: 1}},
	}
}

func samplePrices() PriceSeries {
	return PriceSeries{
		{Date: day("2026-03-03"), WTI: 70.0, Brent: 74.0},
		{Date: day("2026-03-06"), WTI: 72.0, Brent: 76.0},
	}
}

func TestAlignInnerDropsUnpricedDays(t *testing.T) {
	panel := Align(sampleAggs(), samplePrices(), JoinInner)
	require.Len(t, panel, 2)

	// Sorted by (entity, date): RU first.
	assert.Equal(t, "RU", panel[0].Entity)
	assert.Equal(t, 1, panel[0].ThemeSanctions)
	assert.Equal(t, "US", panel[1].Entity)
	assert.Equal(t, day("2026-03-03"), panel[1].Date)
	assert.Equal(t, 70.0, panel[1].WTIPrice)
	assert.Equal(t, 2, panel[1].ThemeEnergy)
}

func TestAlignForwardFillAttachesLastKnownPrice(t *testing.T) {
	panel := Align(sampleAggs(), samplePrices(), JoinForwardFill)
	require.Len(t, panel, 3)

	var sat Row
	for _, r := range panel {
		if r.Entity == "US" && r.Date.Equal(day("2026-03-07")) {
			sat = r
		}
	}
	assert.Equal(t, 72.0, sat.WTIPrice)
	assert.Equal(t, 76.0, sat.BrentPrice)
}

func TestPanelEntities(t *testing.T) {
	panel := Align(sampleAggs(), samplePrices(), JoinForwardFill)
	assert.Equal(t, []string{"RU", "US"}, panel.Entities())
}
