// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package envfit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/internal/ordination"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// fixedScores builds a score table directly; envfit only reads coordinates.
func fixedScores(t *testing.T, ids []string, coords [][]float64) *ordination.ScoreTable {
	t.Helper()
	res := &types.Result{
		Method:        types.MethodPCA,
		Axes:          len(coords[0]),
		Sites:         ids,
		Species:       []string{"spA"},
		SiteScores:    coords,
		SpeciesScores: [][]float64{make([]float64, len(coords[0]))},
	}
	axes := make([]int, len(coords[0]))
	for k := range axes {
		axes[k] = k + 1
	}
	scores, err := ordination.Scores(res, types.ScoreSites, axes)
	require.NoError(t, err)
	return scores
}

func TestVectorFitPerfectCorrelation(t *testing.T) {
	scores := fixedScores(t,
		[]string{"s1", "s2", "s3", "s4"},
		[][]float64{{-3, 1}, {-1, -1}, {1, -1}, {3, 1}})

	// pH cells follow axis 1 exactly: 2*score + 7.
	env, err := comm.ParseEnv(strings.NewReader(
		"site,pH\ns1,1\ns2,5\ns3,9\ns4,13\n"), ',')
	require.NoError(t, err)

	fit, err := Run(scores, env)
	require.NoError(t, err)
	require.Len(t, fit.Vectors, 1)
	require.Empty(t, fit.Factors)

	v := fit.Vectors[0]
	assert.Equal(t, "pH", v.Name)
	assert.InDelta(t, 1.0, v.Corr[0], 1e-9)
	assert.InDelta(t, 0.0, v.Corr[1], 1e-9)
	assert.InDelta(t, 1.0, v.R2, 1e-9)
}

func TestVectorFitUsesAlignment(t *testing.T) {
	scores := fixedScores(t,
		[]string{"s1", "s2", "s3"},
		[][]float64{{-1, 0}, {0, 0}, {1, 0}})

	// Rows out of order in the file; alignment must fix them.
	env, err := comm.ParseEnv(strings.NewReader(
		"site,depth\ns3,30\ns1,10\ns2,20\n"), ',')
	require.NoError(t, err)

	fit, err := Run(scores, env)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fit.Vectors[0].Corr[0], 1e-9)
}

func TestVectorFitConstantAxis(t *testing.T) {
	// A constant axis makes the design matrix rank-deficient next to the
	// intercept; the fit must still succeed on the informative axis.
	scores := fixedScores(t,
		[]string{"s1", "s2", "s3", "s4"},
		[][]float64{{-3, 0}, {-1, 0}, {1, 0}, {3, 0}})

	env, err := comm.ParseEnv(strings.NewReader(
		"site,depth\ns1,10\ns2,20\ns3,30\ns4,40\n"), ',')
	require.NoError(t, err)

	fit, err := Run(scores, env)
	require.NoError(t, err)
	require.Len(t, fit.Vectors, 1)

	v := fit.Vectors[0]
	assert.InDelta(t, 1.0, v.Corr[0], 1e-9)
	assert.Equal(t, 0.0, v.Corr[1], "constant axis has no correlation to report")
	assert.InDelta(t, 1.0, v.R2, 1e-9)
}

func TestVectorFitMissingSite(t *testing.T) {
	scores := fixedScores(t,
		[]string{"s1", "s2", "s3"},
		[][]float64{{-1, 0}, {0, 0}, {1, 0}})

	env, err := comm.ParseEnv(strings.NewReader("site,pH\ns1,4\ns2,5\nsX,6\n"), ',')
	require.NoError(t, err)

	_, err = Run(scores, env)
	assert.ErrorIs(t, err, comm.ErrMalformedInput)
}

func TestFactorFitCentroids(t *testing.T) {
	scores := fixedScores(t,
		[]string{"s1", "s2", "s3", "s4"},
		[][]float64{{-2, 1}, {-2, -1}, {2, 1}, {2, -1}})

	env, err := comm.ParseEnv(strings.NewReader(
		"site,management\ns1,meadow\ns2,meadow\ns3,pasture\ns4,pasture\n"), ',')
	require.NoError(t, err)

	fit, err := Run(scores, env)
	require.NoError(t, err)
	require.Empty(t, fit.Vectors)
	require.Len(t, fit.Factors, 1)

	f := fit.Factors[0]
	require.Len(t, f.Levels, 2)
	assert.Equal(t, "meadow", f.Levels[0].Level, "levels keep first-appearance order")
	assert.Equal(t, 2, f.Levels[0].N)
	assert.InDelta(t, -2.0, f.Levels[0].Centroid[0], 1e-12)
	assert.InDelta(t, 0.0, f.Levels[0].Centroid[1], 1e-12)
	assert.InDelta(t, 2.0, f.Levels[1].Centroid[0], 1e-12)

	// Axis 1 fully separates the groups, axis 2 not at all:
	// among SS = 4*4 = 16 of total 16+4 = 20.
	assert.InDelta(t, 0.8, f.R2, 1e-12)
}

func TestMixedColumns(t *testing.T) {
	scores := fixedScores(t,
		[]string{"s1", "s2"},
		[][]float64{{-1, 0}, {1, 0}})

	env, err := comm.ParseEnv(strings.NewReader(
		"site,pH,habitat\ns1,4,bog\ns2,6,heath\n"), ',')
	require.NoError(t, err)

	fit, err := Run(scores, env)
	require.NoError(t, err)
	assert.Len(t, fit.Vectors, 1)
	assert.Len(t, fit.Factors, 1)
	assert.Equal(t, []string{"PC1", "PC2"}, fit.AxisNames)
}
