package app

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudecast/internal/blob"
	"crudecast/internal/domain/timeline"
)

func TestPanelArtifactRoundTrip(t *testing.T) {
	store := blob.NewFSStore(t.TempDir())
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	panel := timeline.Panel{
		{Entity: "US", Date: day, WTIPrice: 70.5, BrentPrice: 74.2,
			AvgTone: -1.5, ToneStd: 0.8, MentionCount: 12, ThemeEnergy: 3},
		{Entity: "RU", Date: day, WTIPrice: 70.5, BrentPrice: math.NaN(),
			AvgTone: 2.0, MentionCount: 4, ThemeSanctions: 2},
	}

	path, err := writePanelArtifact(store, "processed_data", day, panel)
	require.NoError(t, err)
	assert.Equal(t, "processed_data/final_aligned_data_20260304.json.gz", path)

	got, err := readPanelArtifact(store, path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Sorted by (entity, date) on read.
	assert.Equal(t, "RU", got[0].Entity)
	assert.True(t, math.IsNaN(got[0].BrentPrice))
	assert.Equal(t, 2, got[0].ThemeSanctions)

	assert.Equal(t, "US", got[1].Entity)
	assert.Equal(t, 74.2, got[1].BrentPrice)
	assert.Equal(t, 12, got[1].MentionCount)
	assert.InDelta(t, -1.5, got[1].AvgTone, 1e-12)
}
