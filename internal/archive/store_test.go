// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.ArchiveConfig{
		ArchiveDir: filepath.Join(t.TempDir(), "archive"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testResult() *types.Result {
	return &types.Result{
		Method:        types.MethodNMDS,
		Transform:     types.TransformWisconsin,
		Distance:      types.DistanceBray,
		Axes:          2,
		Sites:         []string{"s1", "s2", "s3"},
		Species:       []string{"spA", "spB"},
		SiteScores:    [][]float64{{-1.2, 0.3}, {0.1, -0.6}, {1.1, 0.3}},
		SpeciesScores: [][]float64{{-0.9, 0.1}, {0.9, -0.1}},
		Diagnostics: types.Diagnostics{
			Stress:    0.081,
			Converged: true,
			Restarts:  20,
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, "dune.csv", testResult())
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	res, summary, err := store.GetRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "dune.csv", summary.Input)
	assert.Equal(t, types.MethodNMDS, summary.Method)
	assert.Equal(t, types.TransformWisconsin, summary.Transform)
	assert.Equal(t, types.DistanceBray, summary.Distance)
	assert.InDelta(t, 0.081, summary.Stress, 1e-12)
	assert.True(t, summary.Converged)

	assert.Equal(t, []string{"s1", "s2", "s3"}, res.Sites)
	assert.Equal(t, []string{"spA", "spB"}, res.Species)
	assert.InDelta(t, -1.2, res.SiteScores[0][0], 1e-12)
	assert.InDelta(t, 0.3, res.SiteScores[0][1], 1e-12)
	assert.InDelta(t, 0.9, res.SpeciesScores[1][0], 1e-12)
	assert.Equal(t, 20, res.Diagnostics.Restarts)
}

func TestGetRunRoundTripsProportions(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	in := testResult()
	in.Method = types.MethodPCA
	in.Distance = ""
	in.Proportions = []float64{0.6, 0.4}

	id, err := store.SaveRun(ctx, "dune.csv", in)
	require.NoError(t, err)

	res, _, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	require.Len(t, res.Proportions, 2)
	assert.InDelta(t, 0.6, res.Proportions[0], 1e-12)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.SaveRun(ctx, "a.csv", testResult())
	require.NoError(t, err)
	second, err := store.SaveRun(ctx, "b.csv", testResult())
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDeleteRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, "a.csv", testResult())
	require.NoError(t, err)

	require.NoError(t, store.DeleteRun(ctx, id))

	_, _, err = store.GetRun(ctx, id)
	require.Error(t, err)

	err = store.DeleteRun(ctx, id)
	require.Error(t, err, "deleting twice must fail")
}

func TestGetRunNotFound(t *testing.T) {
	store := testStore(t)

	_, _, err := store.GetRun(context.Background(), 4242)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
