// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package comm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

func TestParse(t *testing.T) {
	input := "site,spA,spB,spC\ns1,1,0,3\ns2,0,2,1\n"

	table, err := Parse(strings.NewReader(input), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s2"}, table.Sites)
	assert.Equal(t, []string{"spA", "spB", "spC"}, table.Species)
	assert.Equal(t, [][]float64{{1, 0, 3}, {0, 2, 1}}, table.Values)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"header only", "site,spA\n"},
		{"no attributes", "site\ns1\n"},
		{"duplicate site", "site,spA\ns1,1\ns1,2\n"},
		{"duplicate species", "site,spA,spA\ns1,1,2\n"},
		{"non-numeric cell", "site,spA\ns1,lots\n"},
		{"negative value", "site,spA\ns1,-2\n"},
		{"empty site id", "site,spA\n,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), ',')
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestParseRaggedRow(t *testing.T) {
	// encoding/csv reports ragged records; they must surface as malformed input.
	_, err := Parse(strings.NewReader("site,spA,spB\ns1,1\n"), ',')
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestTransformSqrt(t *testing.T) {
	table := mustTable(t, []string{"s1"}, []string{"a", "b"}, [][]float64{{4, 9}})

	out, err := table.Transform(types.TransformSqrt)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{2, 3}}, out.Values)
	assert.Equal(t, [][]float64{{4, 9}}, table.Values, "receiver must stay unchanged")
}

func TestTransformTotal(t *testing.T) {
	table := mustTable(t, []string{"s1", "s2"}, []string{"a", "b"},
		[][]float64{{1, 3}, {0, 0}})

	out, err := table.Transform(types.TransformTotal)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.25, 0.75}, out.Values[0])
	assert.Equal(t, []float64{0, 0}, out.Values[1], "empty rows stay empty")
}

func TestTransformHellinger(t *testing.T) {
	table := mustTable(t, []string{"s1"}, []string{"a", "b"}, [][]float64{{1, 3}})

	out, err := table.Transform(types.TransformHellinger)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out.Values[0][0], 1e-12)
	assert.InDelta(t, math.Sqrt(0.75), out.Values[0][1], 1e-12)
}

func TestTransformWisconsin(t *testing.T) {
	table := mustTable(t, []string{"s1", "s2"}, []string{"a", "b"},
		[][]float64{{2, 0}, {4, 8}})

	out, err := table.Transform(types.TransformWisconsin)
	require.NoError(t, err)

	// After species-max standardization rows are {0.5, 0} and {1, 1};
	// after site totals {1, 0} and {0.5, 0.5}.
	assert.InDelta(t, 1.0, out.Values[0][0], 1e-12)
	assert.InDelta(t, 0.0, out.Values[0][1], 1e-12)
	assert.InDelta(t, 0.5, out.Values[1][0], 1e-12)
	assert.InDelta(t, 0.5, out.Values[1][1], 1e-12)
}

func TestTransformUnsupported(t *testing.T) {
	table := mustTable(t, []string{"s1"}, []string{"a"}, [][]float64{{1}})

	_, err := table.Transform(types.Transform("rank"))
	assert.True(t, errors.Is(err, types.ErrUnsupportedMethod))
}

func mustTable(t *testing.T, sites, species []string, values [][]float64) *Table {
	t.Helper()
	table, err := NewTable(sites, species, values)
	require.NoError(t, err)
	return table
}
