// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

// WriteResult serializes a result to a YAML file for the downstream
// stages (scores, plot, envfit, archive export).
func WriteResult(path string, res *types.Result) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result %s: %w", path, err)
	}
	return nil
}

// ReadResult loads a result written by WriteResult and checks its shape so
// later stages can index scores without re-validating.
func ReadResult(path string) (*types.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", path, err)
	}
	var res types.Result
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	if err := validateResult(&res); err != nil {
		return nil, fmt.Errorf("result %s: %w", path, err)
	}
	return &res, nil
}

func validateResult(res *types.Result) error {
	if _, err := types.ParseMethod(string(res.Method)); err != nil {
		return err
	}
	if res.Axes < 1 {
		return fmt.Errorf("result has no axes")
	}
	if len(res.SiteScores) != len(res.Sites) {
		return fmt.Errorf("%d site score rows for %d sites", len(res.SiteScores), len(res.Sites))
	}
	if len(res.SpeciesScores) != len(res.Species) {
		return fmt.Errorf("%d species score rows for %d species", len(res.SpeciesScores), len(res.Species))
	}
	for i, row := range res.SiteScores {
		if len(row) != res.Axes {
			return fmt.Errorf("site %q has %d coordinates, want %d", res.Sites[i], len(row), res.Axes)
		}
	}
	for j, row := range res.SpeciesScores {
		if len(row) != res.Axes {
			return fmt.Errorf("species %q has %d coordinates, want %d", res.Species[j], len(row), res.Axes)
		}
	}
	return nil
}
