// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// svTolerance discards numerically-zero singular values when counting the
// rank of the CA decomposition.
const svTolerance = 1e-10

// runCA computes a correspondence analysis: the table is treated as a
// contingency table, standardized into chi-square residuals, and the
// residual matrix's singular value decomposition (gonum mat.SVD) yields
// the axes. Row and column scores are reported in principal coordinates.
// CA is deterministic.
func runCA(t *comm.Table) (*types.Result, error) {
	n, d := t.NSites(), t.NSpecies()

	grand := 0.0
	rowTotals := make([]float64, n)
	colTotals := make([]float64, d)
	for i, row := range t.Values {
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("correspondence analysis requires non-negative data, got %v at row %q", v, t.Sites[i])
			}
			grand += v
			rowTotals[i] += v
			colTotals[j] += v
		}
	}
	if grand == 0 {
		return nil, fmt.Errorf("table total is zero")
	}
	for i, rt := range rowTotals {
		if rt == 0 {
			return nil, fmt.Errorf("site %q has zero total abundance", t.Sites[i])
		}
	}
	for j, ct := range colTotals {
		if ct == 0 {
			return nil, fmt.Errorf("species %q has zero total abundance", t.Species[j])
		}
	}

	// Standardized residuals S = Dr^-1/2 (P - r c^T) Dc^-1/2 with P = X/total.
	r := make([]float64, n)
	c := make([]float64, d)
	for i := range r {
		r[i] = rowTotals[i] / grand
	}
	for j := range c {
		c[j] = colTotals[j] / grand
	}

	s := mat.NewDense(n, d, nil)
	for i, row := range t.Values {
		for j, v := range row {
			p := v / grand
			s.Set(i, j, (p-r[i]*c[j])/math.Sqrt(r[i]*c[j]))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(s, mat.SVDThin) {
		return nil, fmt.Errorf("singular value decomposition failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	axes := maxRank(n)
	if d-1 < axes {
		axes = d - 1
	}
	nontrivial := 0
	for _, val := range sv {
		if val > svTolerance {
			nontrivial++
		}
	}
	if nontrivial < axes {
		axes = nontrivial
	}
	if axes < 1 {
		return nil, fmt.Errorf("table yields no non-trivial axes")
	}

	totalInertia := 0.0
	for k := 0; k < axes; k++ {
		totalInertia += sv[k] * sv[k]
	}
	proportions := make([]float64, axes)
	for k := 0; k < axes; k++ {
		proportions[k] = sv[k] * sv[k] / totalInertia
	}

	// Principal coordinates: F = Dr^-1/2 U S, G = Dc^-1/2 V S.
	siteScores := make([][]float64, n)
	for i := 0; i < n; i++ {
		coords := make([]float64, axes)
		for k := 0; k < axes; k++ {
			coords[k] = u.At(i, k) * sv[k] / math.Sqrt(r[i])
		}
		siteScores[i] = coords
	}
	speciesScores := make([][]float64, d)
	for j := 0; j < d; j++ {
		coords := make([]float64, axes)
		for k := 0; k < axes; k++ {
			coords[k] = v.At(j, k) * sv[k] / math.Sqrt(c[j])
		}
		speciesScores[j] = coords
	}

	return &types.Result{
		Method:        types.MethodCA,
		Axes:          axes,
		Proportions:   proportions,
		Sites:         append([]string(nil), t.Sites...),
		Species:       append([]string(nil), t.Species...),
		SiteScores:    siteScores,
		SpeciesScores: speciesScores,
	}, nil
}
