// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ordination runs unconstrained ordinations (PCA, CA, NMDS) over
// community tables and extracts axis scores from their results. The linear
// algebra is delegated to gonum; this package selects the decomposition,
// shapes the uniform Result, and enforces the rank and input invariants.
// See docs/ARCHITECTURE § Ordination.
package ordination

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// ErrTooFewSamples reports a table with fewer than two samples.
var ErrTooFewSamples = errors.New("too few samples")

// ErrAxisOutOfRange reports a requested axis index beyond the computed rank.
var ErrAxisOutOfRange = errors.New("axis out of range")

// Defaults applied by Run when the corresponding config field is zero.
const (
	DefaultDimensions    = 2
	DefaultRestarts      = 20
	DefaultMaxIterations = 300
	DefaultTolerance     = 1e-7
)

// Run applies cfg.Transform to table and dispatches to the selected method.
// The returned Result is immutable; downstream score extraction, plotting,
// and environmental fitting never recompute the ordination. Progress lines
// (NMDS restart stress values) are written to w.
func Run(table *comm.Table, cfg types.OrdinationConfig, w io.Writer) (*types.Result, error) {
	if table.NSites() < 2 {
		return nil, fmt.Errorf("%w: ordination needs at least 2 samples, have %d", ErrTooFewSamples, table.NSites())
	}

	method, err := types.ParseMethod(string(cfg.Method))
	if err != nil {
		return nil, err
	}

	transformed, err := table.Transform(cfg.Transform)
	if err != nil {
		return nil, err
	}

	var res *types.Result
	switch method {
	case types.MethodPCA:
		res, err = runPCA(transformed)
	case types.MethodCA:
		res, err = runCA(transformed)
	case types.MethodNMDS:
		res, err = runNMDS(transformed, cfg, w)
	}
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", method, err)
	}

	res.Transform = cfg.Transform
	if res.Transform == "" {
		res.Transform = types.TransformNone
	}
	return res, nil
}

// maxRank is the non-trivial axis bound for n samples.
func maxRank(n int) int { return n - 1 }

// speciesWeightedAverages places each species at the abundance-weighted
// average of the site scores. This is how distance-based methods obtain
// species coordinates without species entering the decomposition. Species
// absent everywhere sit at the origin.
func speciesWeightedAverages(t *comm.Table, siteScores [][]float64, axes int) [][]float64 {
	out := make([][]float64, t.NSpecies())
	for j := range out {
		coords := make([]float64, axes)
		total := 0.0
		for _, row := range t.Values {
			total += row[j]
		}
		if total > 0 {
			for i, row := range t.Values {
				wgt := row[j] / total
				for k := 0; k < axes; k++ {
					coords[k] += wgt * siteScores[i][k]
				}
			}
		}
		out[j] = coords
	}
	return out
}
