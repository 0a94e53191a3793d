package contract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudecast/internal/domain/features"
)

func TestResolvePrecedence(t *testing.T) {
	scalerNames := []string{"a", "b", "c"}
	metadata := []string{"x", "y"}

	c := Resolve(scalerNames, 3, metadata, nil)
	assert.Equal(t, SourceScaler, c.Source)
	assert.Equal(t, scalerNames, c.Names)
	assert.Equal(t, 3, c.Width)

	c = Resolve(nil, 2, metadata, nil)
	assert.Equal(t, SourceMetadata, c.Source)
	assert.Equal(t, metadata, c.Names)
	assert.False(t, c.Truncated)
}

func TestResolveTruncatesLongMetadata(t *testing.T) {
	c := Resolve(nil, 2, []string{"x", "y", "z"}, nil)
	assert.Equal(t, SourceMetadata, c.Source)
	assert.Equal(t, []string{"x", "y"}, c.Names)
	assert.Equal(t, 2, c.Width)
	assert.True(t, c.Truncated)
}

func TestResolveShortMetadataFallsBackToDefault(t *testing.T) {
	c := Resolve(nil, 99, []string{"x", "y"}, nil)
	assert.Equal(t, SourceDefault, c.Source)
	assert.Equal(t, features.Columns(), c.Names)
	assert.Equal(t, 99, c.Width)
}

func TestResolveDefaultWhenNothingDeclared(t *testing.T) {
	c := Resolve(nil, 0, nil, nil)
	assert.Equal(t, SourceDefault, c.Source)
	assert.Equal(t, len(features.Columns()), c.Width)
}

func TestResolveDynamicWhenDefaultMismatchesScalerWidth(t *testing.T) {
	panelCols := []string{"a", "b", "c"}

	c := Resolve(nil, 3, nil, panelCols)
	assert.Equal(t, SourceDynamic, c.Source)
	assert.Equal(t, panelCols, c.Names)
	assert.Equal(t, 3, c.Width)

	// Panel columns that still disagree with the width cannot help.
	c = Resolve(nil, 4, nil, panelCols)
	assert.Equal(t, SourceDefault, c.Source)
}

func TestAlignBackfillsMissingWithZeros(t *testing.T) {
	c := Contract{Names: []string{"a", "b", "c"}, Width: 3, Source: SourceScaler}
	rows := []features.Row{
		{Entity: "US", Values: map[string]float64{"a": 1.5, "c": math.NaN()}},
		{Entity: "RU", Values: map[string]float64{"a": -2, "c": math.Inf(1)}},
	}

	matrix, err := c.Align(rows)
	require.NoError(t, err)
	require.Len(t, matrix, 2)
	assert.Equal(t, []float64{1.5, 0, 0}, matrix[0])
	assert.Equal(t, []float64{-2, 0, 0}, matrix[1])
}

func TestAlignRejectsWidthMismatch(t *testing.T) {
	c := Contract{Names: []string{"a", "b"}, Width: 3, Source: SourceMetadata}
	_, err := c.Align([]features.Row{{Values: map[string]float64{"a": 1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWidthMismatch)
}
