// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

// ScoreTable is a plain coordinate table sliced out of a Result: one row
// per entity in the result's stable input order, one column per requested
// axis. It is a copy; the source Result is never touched.
type ScoreTable struct {
	// Kind records which entity the rows describe.
	Kind types.ScoreKind `json:"kind" yaml:"kind"`

	// Axes holds the 1-based axis indices in request order.
	Axes []int `json:"axes" yaml:"axes"`

	// AxisNames holds the display names for Axes, e.g. "PC1".
	AxisNames []string `json:"axis_names" yaml:"axis_names"`

	// IDs holds the entity identifiers.
	IDs []string `json:"ids" yaml:"ids"`

	// Coords holds one row per ID, one column per axis.
	Coords [][]float64 `json:"coords" yaml:"coords"`
}

// Scores extracts the coordinates of one entity kind on the given 1-based
// axes. Axis sets may be contiguous or sparse but every index must lie
// within the result's computed rank, otherwise ErrAxisOutOfRange.
func Scores(res *types.Result, kind types.ScoreKind, axes []int) (*ScoreTable, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes requested", ErrAxisOutOfRange)
	}
	for _, a := range axes {
		if a < 1 || a > res.Axes {
			return nil, fmt.Errorf("%w: axis %d, result has %d axes", ErrAxisOutOfRange, a, res.Axes)
		}
	}

	var ids []string
	var source [][]float64
	switch kind {
	case types.ScoreSites:
		ids, source = res.Sites, res.SiteScores
	case types.ScoreSpecies:
		ids, source = res.Species, res.SpeciesScores
	default:
		return nil, fmt.Errorf("%w: score kind %q", types.ErrUnsupportedMethod, kind)
	}

	names := make([]string, len(axes))
	for i, a := range axes {
		names[i] = res.AxisName(a)
	}

	coords := make([][]float64, len(ids))
	for i := range ids {
		row := make([]float64, len(axes))
		for k, a := range axes {
			row[k] = source[i][a-1]
		}
		coords[i] = row
	}

	return &ScoreTable{
		Kind:      kind,
		Axes:      append([]int(nil), axes...),
		AxisNames: names,
		IDs:       append([]string(nil), ids...),
		Coords:    coords,
	}, nil
}

// ParseAxes parses a comma-separated list of 1-based axis indices, e.g.
// "1,2" or "1,3". Duplicates are rejected; order is preserved.
func ParseAxes(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return []int{1, 2}, nil
	}
	parts := strings.Split(s, ",")
	axes := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, part := range parts {
		a, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing axis list %q: %w", s, err)
		}
		if a < 1 {
			return nil, fmt.Errorf("%w: axis %d", ErrAxisOutOfRange, a)
		}
		if _, dup := seen[a]; dup {
			return nil, fmt.Errorf("duplicate axis %d in %q", a, s)
		}
		seen[a] = struct{}{}
		axes = append(axes, a)
	}
	return axes, nil
}

// Column returns the coordinates of one axis by its position in the
// request, preserving row order.
func (st *ScoreTable) Column(k int) []float64 {
	out := make([]float64, len(st.Coords))
	for i, row := range st.Coords {
		out[i] = row[k]
	}
	return out
}
