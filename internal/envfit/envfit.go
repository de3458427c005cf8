// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envfit relates explanatory (environmental) variables to
// ordination axes. The comparison is strictly read-only: covariates are
// correlated against an existing result's site scores and never enter the
// ordination itself.
// See docs/ARCHITECTURE § Environmental Fit.
package envfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/internal/ordination"
)

// VectorFit describes a numeric covariate's relation to the axes.
type VectorFit struct {
	// Name is the variable identifier from the environment table.
	Name string `json:"name" yaml:"name"`

	// Corr holds the Pearson correlation with each requested axis.
	Corr []float64 `json:"corr" yaml:"corr"`

	// R2 is the squared multiple correlation of the variable regressed on
	// the requested axes together.
	R2 float64 `json:"r2" yaml:"r2"`
}

// LevelCentroid is one factor level's mean position on the axes.
type LevelCentroid struct {
	Level    string    `json:"level" yaml:"level"`
	N        int       `json:"n" yaml:"n"`
	Centroid []float64 `json:"centroid" yaml:"centroid"`
}

// FactorFit describes a categorical covariate's relation to the axes.
type FactorFit struct {
	// Name is the variable identifier from the environment table.
	Name string `json:"name" yaml:"name"`

	// Levels holds per-level centroids in first-appearance order.
	Levels []LevelCentroid `json:"levels" yaml:"levels"`

	// R2 is the among-level share of the total sum of squares over the
	// requested axes.
	R2 float64 `json:"r2" yaml:"r2"`
}

// Fit holds the fitted vectors and factors for one environment table.
type Fit struct {
	AxisNames []string    `json:"axis_names" yaml:"axis_names"`
	Vectors   []VectorFit `json:"vectors" yaml:"vectors"`
	Factors   []FactorFit `json:"factors" yaml:"factors"`
}

// Run aligns env to the score table's sites and fits every variable:
// columns that parse fully as numbers become vectors, the rest factors.
func Run(scores *ordination.ScoreTable, env *comm.EnvTable) (*Fit, error) {
	aligned, err := env.Align(scores.IDs)
	if err != nil {
		return nil, fmt.Errorf("aligning environment table: %w", err)
	}

	fit := &Fit{AxisNames: append([]string(nil), scores.AxisNames...)}
	for j, name := range aligned.Vars {
		if values, ok := aligned.NumericColumn(j); ok {
			vf, err := fitVector(name, values, scores)
			if err != nil {
				return nil, fmt.Errorf("fitting %q: %w", name, err)
			}
			fit.Vectors = append(fit.Vectors, vf)
			continue
		}
		fit.Factors = append(fit.Factors, fitFactor(name, aligned.Column(j), scores))
	}
	return fit, nil
}

// fitVector computes per-axis Pearson correlations and the multiple R2 of
// the covariate against all requested axes via least squares. The solve is
// SVD-based so a rank-deficient design matrix (a constant axis alongside
// the intercept) still yields the minimum-norm fit instead of an error.
func fitVector(name string, values []float64, scores *ordination.ScoreTable) (VectorFit, error) {
	nAxes := len(scores.Axes)
	corr := make([]float64, nAxes)
	for k := 0; k < nAxes; k++ {
		corr[k] = correlation(values, scores.Column(k))
	}

	n := len(values)
	design := mat.NewDense(n, nAxes+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for k := 0; k < nAxes; k++ {
			design.Set(i, k+1, scores.Coords[i][k])
		}
	}
	response := mat.NewVecDense(n, append([]float64(nil), values...))

	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDThin) {
		return VectorFit{}, fmt.Errorf("decomposing design matrix for %q", name)
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, response, svd.Rank(1e-12))

	mean := stat.Mean(values, nil)
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		pred := beta.AtVec(0)
		for k := 0; k < nAxes; k++ {
			pred += beta.AtVec(k+1) * scores.Coords[i][k]
		}
		r := values[i] - pred
		ssRes += r * r
		d := values[i] - mean
		ssTot += d * d
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return VectorFit{Name: name, Corr: corr, R2: r2}, nil
}

// correlation is Pearson's r with constant inputs reported as 0 rather
// than the NaN stat.Correlation produces for zero variance.
func correlation(x, y []float64) float64 {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// fitFactor computes per-level centroids and the among-level R2 across the
// requested axes.
func fitFactor(name string, levels []string, scores *ordination.ScoreTable) FactorFit {
	nAxes := len(scores.Axes)

	order := make([]string, 0)
	groups := make(map[string][]int)
	for i, level := range levels {
		if _, seen := groups[level]; !seen {
			order = append(order, level)
		}
		groups[level] = append(groups[level], i)
	}

	grand := make([]float64, nAxes)
	for _, row := range scores.Coords {
		for k := 0; k < nAxes; k++ {
			grand[k] += row[k]
		}
	}
	for k := range grand {
		grand[k] /= float64(len(scores.Coords))
	}

	var ssAmong, ssTotal float64
	for _, row := range scores.Coords {
		for k := 0; k < nAxes; k++ {
			d := row[k] - grand[k]
			ssTotal += d * d
		}
	}

	out := FactorFit{Name: name}
	for _, level := range order {
		members := groups[level]
		centroid := make([]float64, nAxes)
		for _, i := range members {
			for k := 0; k < nAxes; k++ {
				centroid[k] += scores.Coords[i][k]
			}
		}
		for k := range centroid {
			centroid[k] /= float64(len(members))
		}
		for k := 0; k < nAxes; k++ {
			d := centroid[k] - grand[k]
			ssAmong += d * d * float64(len(members))
		}
		out.Levels = append(out.Levels, LevelCentroid{Level: level, N: len(members), Centroid: centroid})
	}

	if ssTotal > 0 {
		out.R2 = ssAmong / ssTotal
	}
	return out
}
