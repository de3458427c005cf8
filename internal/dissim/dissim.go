// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dissim computes pairwise dissimilarity matrices over community
// table rows for distance-based ordination.
// See docs/ARCHITECTURE § Dissimilarity.
package dissim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// ErrDegenerate reports a dissimilarity matrix that cannot drive an
// ordination: an undefined pair (two all-zero samples under a
// proportional measure) or a matrix with no variation at all.
var ErrDegenerate = errors.New("degenerate dissimilarity")

// Matrix is a symmetric sites-by-sites dissimilarity matrix.
type Matrix struct {
	// Labels holds the site identifiers in table order.
	Labels []string

	d *mat.SymDense
}

// Len returns the number of sites.
func (m *Matrix) Len() int { return len(m.Labels) }

// At returns the dissimilarity between sites i and j.
func (m *Matrix) At(i, j int) float64 { return m.d.At(i, j) }

// Sym exposes the matrix for gonum consumers. The returned value shares
// storage; callers must not modify it.
func (m *Matrix) Sym() mat.Symmetric { return m.d }

// Max returns the largest pairwise dissimilarity.
func (m *Matrix) Max() float64 {
	max := 0.0
	n := m.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := m.d.At(i, j); v > max {
				max = v
			}
		}
	}
	return max
}

// Compute builds the pairwise dissimilarity matrix of t's rows under the
// given measure. Proportional measures (bray, jaccard) define a pair with
// zero shared species as maximally dissimilar (1.0) when either sample is
// non-empty; a pair of two all-zero samples is undefined and reported as
// ErrDegenerate. A matrix with zero variation everywhere is also
// ErrDegenerate, since no ordering of pairs exists for NMDS to fit.
func Compute(t *comm.Table, measure types.Distance) (*Matrix, error) {
	if t.NSites() < 2 {
		return nil, fmt.Errorf("need at least 2 samples, have %d", t.NSites())
	}

	pair, err := pairFunc(t, measure)
	if err != nil {
		return nil, err
	}

	n := t.NSites()
	d := mat.NewSymDense(n, nil)
	anyVariation := false
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v, err := pair(t, i, j)
			if err != nil {
				return nil, fmt.Errorf("%w: sites %q and %q: %v", ErrDegenerate, t.Sites[i], t.Sites[j], err)
			}
			d.SetSym(i, j, v)
			if v > 0 {
				anyVariation = true
			}
		}
	}
	if !anyVariation {
		return nil, fmt.Errorf("%w: all pairwise dissimilarities are zero", ErrDegenerate)
	}

	return &Matrix{Labels: append([]string(nil), t.Sites...), d: d}, nil
}

type pairFn func(t *comm.Table, i, j int) (float64, error)

func pairFunc(t *comm.Table, measure types.Distance) (pairFn, error) {
	switch measure {
	case types.DistanceBray, "":
		return brayCurtis, nil
	case types.DistanceJaccard:
		return jaccard, nil
	case types.DistanceEuclidean:
		return euclidean, nil
	case types.DistanceManhattan:
		return manhattan, nil
	case types.DistanceGower:
		return gowerFunc(t), nil
	}
	return nil, fmt.Errorf("%w: distance %q", types.ErrUnsupportedMethod, measure)
}

// brayCurtis computes sum|a-b| / sum(a+b).
func brayCurtis(t *comm.Table, i, j int) (float64, error) {
	num, den := 0.0, 0.0
	a, b := t.Values[i], t.Values[j]
	for k := range a {
		num += math.Abs(a[k] - b[k])
		den += a[k] + b[k]
	}
	if den == 0 {
		return 0, errors.New("both samples are empty, Bray-Curtis is 0/0")
	}
	return num / den, nil
}

// jaccard is the quantitative (Ruzicka) form: 1 - sum(min)/sum(max).
func jaccard(t *comm.Table, i, j int) (float64, error) {
	minSum, maxSum := 0.0, 0.0
	a, b := t.Values[i], t.Values[j]
	for k := range a {
		minSum += math.Min(a[k], b[k])
		maxSum += math.Max(a[k], b[k])
	}
	if maxSum == 0 {
		return 0, errors.New("both samples are empty, Jaccard is 0/0")
	}
	return 1 - minSum/maxSum, nil
}

func euclidean(t *comm.Table, i, j int) (float64, error) {
	ss := 0.0
	a, b := t.Values[i], t.Values[j]
	for k := range a {
		d := a[k] - b[k]
		ss += d * d
	}
	return math.Sqrt(ss), nil
}

func manhattan(t *comm.Table, i, j int) (float64, error) {
	sum := 0.0
	a, b := t.Values[i], t.Values[j]
	for k := range a {
		sum += math.Abs(a[k] - b[k])
	}
	return sum, nil
}

// gowerFunc averages per-species |a-b| scaled by the species range over
// the whole table. Species with zero range contribute nothing. Ranges are
// precomputed once for the table.
func gowerFunc(t *comm.Table) pairFn {
	ranges := make([]float64, t.NSpecies())
	for k := range ranges {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range t.Values {
			if row[k] < lo {
				lo = row[k]
			}
			if row[k] > hi {
				hi = row[k]
			}
		}
		ranges[k] = hi - lo
	}

	return func(t *comm.Table, i, j int) (float64, error) {
		sum := 0.0
		used := 0
		a, b := t.Values[i], t.Values[j]
		for k := range a {
			if ranges[k] == 0 {
				continue
			}
			sum += math.Abs(a[k]-b[k]) / ranges[k]
			used++
		}
		if used == 0 {
			return 0, errors.New("no species varies, Gower is undefined")
		}
		return sum / float64(used), nil
	}
}
