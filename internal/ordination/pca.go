// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// runPCA computes a principal components analysis of the table. The
// eigen-decomposition of the covariance structure is delegated to gonum's
// stat.PC; this function centers nothing itself beyond what stat.PC does,
// and only projects sites and scales species loadings into the Result.
// PCA is deterministic: the same table always yields the same Result.
func runPCA(t *comm.Table) (*types.Result, error) {
	n, d := t.NSites(), t.NSpecies()

	x := mat.NewDense(n, d, nil)
	for i, row := range t.Values {
		x.SetRow(i, row)
	}

	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		return nil, fmt.Errorf("principal components decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	axes := maxRank(n)
	if d < axes {
		axes = d
	}
	if c := len(vars); c < axes {
		axes = c
	}
	if axes < 1 {
		return nil, fmt.Errorf("table yields no non-trivial axes")
	}

	total := 0.0
	for k := 0; k < axes; k++ {
		total += vars[k]
	}
	if total == 0 {
		return nil, fmt.Errorf("table has no variance to decompose")
	}
	proportions := make([]float64, axes)
	for k := 0; k < axes; k++ {
		proportions[k] = vars[k] / total
	}

	// Site scores: centered data projected onto the principal directions.
	means := make([]float64, d)
	for _, row := range t.Values {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}

	siteScores := make([][]float64, n)
	for i, row := range t.Values {
		coords := make([]float64, axes)
		for k := 0; k < axes; k++ {
			s := 0.0
			for j, v := range row {
				s += (v - means[j]) * vecs.At(j, k)
			}
			coords[k] = s
		}
		siteScores[i] = coords
	}

	// Species scores: loadings scaled by the axis standard deviation.
	speciesScores := make([][]float64, d)
	for j := 0; j < d; j++ {
		coords := make([]float64, axes)
		for k := 0; k < axes; k++ {
			coords[k] = vecs.At(j, k) * math.Sqrt(vars[k])
		}
		speciesScores[j] = coords
	}

	return &types.Result{
		Method:        types.MethodPCA,
		Axes:          axes,
		Proportions:   proportions,
		Sites:         append([]string(nil), t.Sites...),
		Species:       append([]string(nil), t.Species...),
		SiteScores:    siteScores,
		SpeciesScores: speciesScores,
	}, nil
}
