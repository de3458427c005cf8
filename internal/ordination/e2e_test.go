// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// sparseCommunity builds a reproducible 20-site x 30-species count table
// with many zero entries, shaped like a sampled gradient: each site hosts
// a window of species with pseudo-random counts.
func sparseCommunity(t *testing.T) *comm.Table {
	t.Helper()

	const nSites, nSpecies = 20, 30
	sites := make([]string, nSites)
	species := make([]string, nSpecies)
	for i := range sites {
		sites[i] = fmt.Sprintf("site%02d", i+1)
	}
	for j := range species {
		species[j] = fmt.Sprintf("sp%02d", j+1)
	}

	state := uint64(20240915)
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state >> 33
	}

	values := make([][]float64, nSites)
	for i := range values {
		row := make([]float64, nSpecies)
		center := i * (nSpecies - 1) / (nSites - 1)
		for j := range row {
			span := center - j
			if span < 0 {
				span = -span
			}
			if span <= 4 {
				row[j] = float64(next()%9) + 1
			}
		}
		values[i] = row
	}

	table, err := comm.NewTable(sites, species, values)
	require.NoError(t, err)
	return table
}

func TestEndToEndSparseTable(t *testing.T) {
	table := sparseCommunity(t)
	res := runFor(t, table, types.OrdinationConfig{Method: types.MethodPCA})

	assert.LessOrEqual(t, res.Axes, 19, "at most N-1 axes for 20 samples")

	combined := res.Proportions[0] + res.Proportions[1]
	assert.Greater(t, combined, 0.0)
	assert.LessOrEqual(t, combined, 1.0)

	scores, err := Scores(res, types.ScoreSites, []int{1})
	require.NoError(t, err)
	require.Len(t, scores.IDs, 20)
	require.Len(t, scores.Coords, 20)
	assert.Equal(t, table.Sites, scores.IDs)

	sum := 0.0
	for _, p := range res.Proportions {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEndToEndAllMethodsAgreeOnGradientEnds(t *testing.T) {
	table := sparseCommunity(t)

	for _, cfg := range []types.OrdinationConfig{
		{Method: types.MethodPCA},
		{Method: types.MethodCA},
		{Method: types.MethodNMDS, Restarts: 4, Seed: 17},
	} {
		t.Run(string(cfg.Method), func(t *testing.T) {
			res := runFor(t, table, cfg)

			// The windowed gradient puts the first and last sites at
			// opposite compositional extremes: on axis 1 they must land
			// farther apart than adjacent sites.
			first := res.SiteScores[0][0]
			last := res.SiteScores[19][0]
			second := res.SiteScores[1][0]

			endSpan := first - last
			if endSpan < 0 {
				endSpan = -endSpan
			}
			adjSpan := first - second
			if adjSpan < 0 {
				adjSpan = -adjSpan
			}
			assert.Greater(t, endSpan, adjSpan)
		})
	}
}
