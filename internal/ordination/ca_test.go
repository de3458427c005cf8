// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

func TestCAShapeAndProportions(t *testing.T) {
	table := testTable(t)
	res := runFor(t, table, types.OrdinationConfig{Method: types.MethodCA})

	assert.Equal(t, types.MethodCA, res.Method)
	assert.LessOrEqual(t, res.Axes, table.NSites()-1, "rank bound")
	assert.LessOrEqual(t, res.Axes, table.NSpecies()-1, "CA rank is min(n,d)-1")
	assert.Len(t, res.SiteScores, table.NSites())
	assert.Len(t, res.SpeciesScores, table.NSpecies())

	sum := 0.0
	for _, p := range res.Proportions {
		assert.Greater(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCADeterminism(t *testing.T) {
	table := testTable(t)
	first := runFor(t, table, types.OrdinationConfig{Method: types.MethodCA})
	second := runFor(t, table, types.OrdinationConfig{Method: types.MethodCA})

	assert.Equal(t, first.Proportions, second.Proportions)
	assert.Equal(t, first.SiteScores, second.SiteScores)
}

func TestCASeparatesDominanceGroups(t *testing.T) {
	res := runFor(t, testTable(t), types.OrdinationConfig{Method: types.MethodCA})

	sign := func(v float64) bool { return v > 0 }
	g1 := sign(res.SiteScores[0][0])
	for i := 1; i < 3; i++ {
		assert.Equal(t, g1, sign(res.SiteScores[i][0]), "site %d", i)
	}
	for i := 3; i < 6; i++ {
		assert.NotEqual(t, g1, sign(res.SiteScores[i][0]), "site %d", i)
	}
}

func TestCARejectsEmptyRow(t *testing.T) {
	table := mustTable(t,
		[]string{"s1", "s2", "s3"},
		[]string{"spA", "spB"},
		[][]float64{
			{1, 2},
			{0, 0},
			{2, 1},
		})

	_, err := Run(table, types.OrdinationConfig{Method: types.MethodCA}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero total")
}

func TestCARejectsEmptyColumn(t *testing.T) {
	table := mustTable(t,
		[]string{"s1", "s2"},
		[]string{"spA", "spB"},
		[][]float64{
			{1, 0},
			{2, 0},
		})

	_, err := Run(table, types.OrdinationConfig{Method: types.MethodCA}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero total")
}
