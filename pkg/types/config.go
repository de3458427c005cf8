// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OrdinationConfig holds settings for the run stage.
type OrdinationConfig struct {
	// Method selects the technique: pca, ca, or nmds.
	Method Method `json:"method" yaml:"method" mapstructure:"method"`

	// Transform is the standardization applied before ordination (default none).
	Transform Transform `json:"transform" yaml:"transform" mapstructure:"transform"`

	// Distance is the dissimilarity measure for NMDS (default bray).
	Distance Distance `json:"distance" yaml:"distance" mapstructure:"distance"`

	// Dimensions is the embedding dimensionality for NMDS (default 2).
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`

	// Restarts is the number of NMDS starts searched for the minimal-stress
	// configuration (default 20). More restarts never worsen the best stress.
	Restarts int `json:"restarts" yaml:"restarts" mapstructure:"restarts"`

	// Seed seeds the NMDS random starts. Runs with the same seed and
	// restart count are reproducible.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// MaxIterations caps each NMDS restart's refinement loop (default 300).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// Tolerance is the stress-change convergence threshold (default 1e-7).
	Tolerance float64 `json:"tolerance" yaml:"tolerance" mapstructure:"tolerance"`
}

// PlotConfig holds settings for the plot stage.
type PlotConfig struct {
	// Title is the annotation drawn above the plot.
	Title string `json:"title" yaml:"title" mapstructure:"title"`

	// WidthCm and HeightCm set the canvas size in centimeters (default 18x14).
	WidthCm  float64 `json:"width_cm" yaml:"width_cm" mapstructure:"width_cm"`
	HeightCm float64 `json:"height_cm" yaml:"height_cm" mapstructure:"height_cm"`
}

// ArchiveConfig holds settings for the run archive.
type ArchiveConfig struct {
	// ArchiveDir is the directory containing the SQLite catalog (default "archive").
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir" mapstructure:"archive_dir"`

	// MaxResults is the default maximum number of listed runs (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Ordination OrdinationConfig `json:"ordination" yaml:"ordination" mapstructure:"ordination"`
	Plot       PlotConfig       `json:"plot" yaml:"plot" mapstructure:"plot"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive" mapstructure:"archive"`
}
