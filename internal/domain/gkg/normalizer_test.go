package gkg

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

func TestNormalizeGroupsByEntity(t *testing.T) {
	n := NewNormalizer(10)
	records := []Record{
		{
			ID:        "a",
			Locations: "1#United States#US#USA#38#-97#US",
			Tone:      "2.0,1.0,0.5,3.0",
			Themes:    "ENV_OIL;ARMED_CONFLICT",
		},
		{
			ID:        "b",
			Locations: "1#United States#US#USA#38#-97#US",
			Tone:      "-4.0,0.5,4.5,5.0",
			Themes:    "ENV_OIL",
		},
		{
			ID:        "c",
			Locations: "4#Riyadh#SA#SAU#24.6#46.7#1",
			Tone:      "1.0,2.0,1.0,3.0",
			Themes:    "EDUCATION",
		},
		{
			// No parsable location: contributes nothing.
			ID:   "d",
			Tone: "9.0",
		},
	}

	aggs := n.Normalize(day("2026-03-02"), records)
	require.Len(t, aggs, 2)

	sa, us := aggs[0], aggs[1]
	assert.Equal(t, "SA", sa.Entity)
	assert.Equal(t, "US", us.Entity)

	assert.Equal(t, 2, us.MentionCount)
	assert.InDelta(t, -1.0, us.AvgTone, 1e-12)
	assert.InDelta(t, 3.0, us.ToneStd, 1e-12)
	assert.Equal(t, 2, us.ThemeCount(CategoryEnergy))
	assert.Equal(t, 1, us.ThemeCount(CategoryConflict))

	assert.Equal(t, 1, sa.MentionCount)
	assert.Equal(t, 0, sa.ThemeCount(CategoryEnergy))
}

func TestNormalizeSingleMentionStdIsZero(t *testing.T) {
	n := NewNormalizer(10)
	aggs := n.Normalize(day("2026-03-02"), []Record{
		{ID: "a", Locations: "1#Nigeria#NI#NGA#9#8#1", Tone: "3.5,1,1,2"},
	})
	require.Len(t, aggs, 1)
	assert.InDelta(t, 3.5, aggs[0].AvgTone, 1e-12)
	assert.Zero(t, aggs[0].ToneStd)
	assert.False(t, math.IsNaN(aggs[0].ToneStd))
}

func TestNormalizeMultiCountryRecordCountsEach(t *testing.T) {
	n := NewNormalizer(10)
	aggs := n.Normalize(day("2026-03-02"), []Record{
		{
			ID:        "a",
			Locations: "1#United States#US#USA#38#-97#US;1#Russia#RU#RUS#55#37#1",
			Tone:      "1.0",
			Themes:    "TRADE_WAR",
		},
	})
	require.Len(t, aggs, 2)
	for _, agg := range aggs {
		assert.Equal(t, 1, agg.MentionCount)
		// TRADE_WAR hits the conflict rule before the trade rule.
		assert.Equal(t, 1, agg.ThemeCount(CategoryConflict))
	}
}
