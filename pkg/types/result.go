// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strconv"

// Diagnostics holds method-specific quality information for a run. For
// PCA and CA all fields are zero; NMDS fills them in.
type Diagnostics struct {
	// Stress is the final Kruskal stress-1 of the best configuration.
	// Lower is better; no pass/fail threshold is imposed here.
	Stress float64 `json:"stress" yaml:"stress"`

	// Iterations is the iteration count of the winning restart.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Converged reports whether the winning restart met the stress
	// tolerance before hitting the iteration cap.
	Converged bool `json:"converged" yaml:"converged"`

	// Restarts is the number of random starts searched.
	Restarts int `json:"restarts" yaml:"restarts"`
}

// Result is the uniform output of one ordination run. It is created once by
// the runner and never mutated afterwards; score extraction, plotting, and
// environmental fitting all read from it.
type Result struct {
	// Method is the technique that produced this result.
	Method Method `json:"method" yaml:"method"`

	// Transform is the standardization that was applied to the input table.
	Transform Transform `json:"transform" yaml:"transform"`

	// Distance is the dissimilarity measure used (NMDS only, empty otherwise).
	Distance Distance `json:"distance,omitempty" yaml:"distance,omitempty"`

	// Axes is the number of computed ordination axes. Bounded by the number
	// of samples minus one.
	Axes int `json:"axes" yaml:"axes"`

	// Proportions holds the per-axis proportion of total variance (PCA) or
	// inertia (CA) explained. Sums to 1 across the computed axes. Nil for NMDS.
	Proportions []float64 `json:"proportions,omitempty" yaml:"proportions,omitempty"`

	// Sites lists the sample identifiers in input order.
	Sites []string `json:"sites" yaml:"sites"`

	// Species lists the attribute identifiers in input order.
	Species []string `json:"species" yaml:"species"`

	// SiteScores holds one row per site, one column per axis.
	SiteScores [][]float64 `json:"site_scores" yaml:"site_scores"`

	// SpeciesScores holds one row per species, one column per axis.
	SpeciesScores [][]float64 `json:"species_scores" yaml:"species_scores"`

	// Diagnostics carries NMDS quality information.
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// AxisName returns the conventional display name of a 1-based axis,
// e.g. "PC1", "CA2", "NMDS1".
func (r *Result) AxisName(axis int) string {
	prefix := "Axis"
	switch r.Method {
	case MethodPCA:
		prefix = "PC"
	case MethodCA:
		prefix = "CA"
	case MethodNMDS:
		prefix = "NMDS"
	}
	return prefix + strconv.Itoa(axis)
}
