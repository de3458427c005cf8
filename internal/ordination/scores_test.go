// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

func TestScoresSitesAxisOne(t *testing.T) {
	table := testTable(t)
	res := runFor(t, table, types.OrdinationConfig{Method: types.MethodPCA})

	scores, err := Scores(res, types.ScoreSites, []int{1})
	require.NoError(t, err)

	assert.Equal(t, table.Sites, scores.IDs, "rows keyed by original identifiers in input order")
	assert.Len(t, scores.Coords, table.NSites())
	assert.Equal(t, []string{"PC1"}, scores.AxisNames)
	for i, row := range scores.Coords {
		require.Len(t, row, 1)
		assert.Equal(t, res.SiteScores[i][0], row[0])
	}
}

func TestScoresSparseAxes(t *testing.T) {
	res := runFor(t, testTable(t), types.OrdinationConfig{Method: types.MethodPCA})
	require.GreaterOrEqual(t, res.Axes, 3)

	scores, err := Scores(res, types.ScoreSpecies, []int{1, 3})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, scores.Axes)
	assert.Equal(t, []string{"PC1", "PC3"}, scores.AxisNames)
	for j, row := range scores.Coords {
		assert.Equal(t, res.SpeciesScores[j][0], row[0])
		assert.Equal(t, res.SpeciesScores[j][2], row[1])
	}
}

func TestScoresAxisOutOfRange(t *testing.T) {
	res := runFor(t, testTable(t), types.OrdinationConfig{Method: types.MethodPCA})

	_, err := Scores(res, types.ScoreSites, []int{res.Axes + 1})
	assert.ErrorIs(t, err, ErrAxisOutOfRange)

	_, err = Scores(res, types.ScoreSites, []int{0})
	assert.ErrorIs(t, err, ErrAxisOutOfRange)

	_, err = Scores(res, types.ScoreSites, nil)
	assert.ErrorIs(t, err, ErrAxisOutOfRange)
}

func TestScoresDoNotMutateResult(t *testing.T) {
	res := runFor(t, testTable(t), types.OrdinationConfig{Method: types.MethodPCA})
	original := res.SiteScores[0][0]

	scores, err := Scores(res, types.ScoreSites, []int{1, 2})
	require.NoError(t, err)

	scores.Coords[0][0] = 999
	scores.IDs[0] = "mutated"
	assert.Equal(t, original, res.SiteScores[0][0])
	assert.NotEqual(t, "mutated", res.Sites[0])
}

func TestScoresUnknownKind(t *testing.T) {
	res := runFor(t, testTable(t), types.OrdinationConfig{Method: types.MethodPCA})

	_, err := Scores(res, types.ScoreKind("axes"), []int{1})
	assert.ErrorIs(t, err, types.ErrUnsupportedMethod)
}

func TestParseAxes(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", []int{1, 2}, false},
		{"1,2", []int{1, 2}, false},
		{"1, 3", []int{1, 3}, false},
		{"2", []int{2}, false},
		{"1,1", nil, true},
		{"0", nil, true},
		{"one", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAxes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
