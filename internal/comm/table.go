// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package comm loads and standardizes community data tables: samples (sites)
// on rows, attributes (species) on columns, non-negative abundance values.
// See docs/ARCHITECTURE § Community Tables.
package comm

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/ordination-engine/pkg/types"
)

// ErrMalformedInput reports a structurally invalid input table: bad header,
// duplicate identifiers, ragged rows, non-numeric or negative values.
var ErrMalformedInput = errors.New("malformed input")

// Table is a sites-by-species abundance matrix with stable identifiers.
// Rows follow input order; that order is preserved through ordination and
// score extraction.
type Table struct {
	// Sites holds the unique row identifiers in input order.
	Sites []string

	// Species holds the unique column identifiers in input order.
	Species []string

	// Values holds one row per site, one column per species.
	Values [][]float64
}

// NewTable builds a table from identifiers and values, validating the
// community-data invariants: at least one site and species, matching
// dimensions, unique identifiers, finite non-negative values.
func NewTable(sites, species []string, values [][]float64) (*Table, error) {
	if len(sites) == 0 || len(species) == 0 {
		return nil, fmt.Errorf("%w: table has no rows or no columns", ErrMalformedInput)
	}
	if len(values) != len(sites) {
		return nil, fmt.Errorf("%w: %d value rows for %d sites", ErrMalformedInput, len(values), len(sites))
	}
	if err := uniqueIDs("site", sites); err != nil {
		return nil, err
	}
	if err := uniqueIDs("species", species); err != nil {
		return nil, err
	}
	for i, row := range values {
		if len(row) != len(species) {
			return nil, fmt.Errorf("%w: row %q has %d values, want %d", ErrMalformedInput, sites[i], len(row), len(species))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite value at row %q column %q", ErrMalformedInput, sites[i], species[j])
			}
			if v < 0 {
				return nil, fmt.Errorf("%w: negative abundance %v at row %q column %q", ErrMalformedInput, v, sites[i], species[j])
			}
		}
	}
	return &Table{Sites: sites, Species: species, Values: values}, nil
}

// NSites returns the number of samples.
func (t *Table) NSites() int { return len(t.Sites) }

// NSpecies returns the number of attributes.
func (t *Table) NSpecies() int { return len(t.Species) }

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	values := make([][]float64, len(t.Values))
	for i, row := range t.Values {
		values[i] = append([]float64(nil), row...)
	}
	return &Table{
		Sites:   append([]string(nil), t.Sites...),
		Species: append([]string(nil), t.Species...),
		Values:  values,
	}
}

// Transform returns a new table with the given standardization applied.
// The receiver is never modified.
func (t *Table) Transform(tr types.Transform) (*Table, error) {
	out := t.Copy()
	switch tr {
	case types.TransformNone, "":
		// Raw abundances.
	case types.TransformSqrt:
		for _, row := range out.Values {
			for j, v := range row {
				row[j] = math.Sqrt(v)
			}
		}
	case types.TransformTotal:
		out.divideByRowTotals()
	case types.TransformHellinger:
		out.divideByRowTotals()
		for _, row := range out.Values {
			for j, v := range row {
				row[j] = math.Sqrt(v)
			}
		}
	case types.TransformWisconsin:
		// Species maximum standardization, then site totals.
		for j := range out.Species {
			max := 0.0
			for _, row := range out.Values {
				if row[j] > max {
					max = row[j]
				}
			}
			if max == 0 {
				continue
			}
			for _, row := range out.Values {
				row[j] /= max
			}
		}
		out.divideByRowTotals()
	default:
		return nil, fmt.Errorf("%w: transform %q", types.ErrUnsupportedMethod, tr)
	}
	return out, nil
}

// divideByRowTotals standardizes each row to relative abundance. All-zero
// rows are left untouched rather than producing 0/0.
func (t *Table) divideByRowTotals() {
	for _, row := range t.Values {
		total := 0.0
		for _, v := range row {
			total += v
		}
		if total == 0 {
			continue
		}
		for j := range row {
			row[j] /= total
		}
	}
}

func uniqueIDs(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty %s identifier", ErrMalformedInput, kind)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate %s identifier %q", ErrMalformedInput, kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
