// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package comm

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// EnvTable holds explanatory (environmental) variables row-aligned to a
// community table by site identifier. Cells stay as strings until a
// consumer decides whether a column is numeric or categorical; the table
// is read-only with respect to ordination.
type EnvTable struct {
	// Sites holds the row identifiers in file order.
	Sites []string

	// Vars holds the column identifiers in file order.
	Vars []string

	// Cells holds one row per site, one cell per variable.
	Cells [][]string
}

// LoadEnv reads a delimited explanatory table from path, using the same
// layout conventions as Load.
func LoadEnv(path string) (*EnvTable, error) {
	return LoadEnvDelim(path, delimiterFor(path))
}

// LoadEnvDelim is LoadEnv with an explicit delimiter.
func LoadEnvDelim(path string, delim rune) (*EnvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening environment table %s: %w", path, err)
	}
	defer f.Close()

	env, err := ParseEnv(f, delim)
	if err != nil {
		return nil, fmt.Errorf("parsing environment table %s: %w", path, err)
	}
	return env, nil
}

// ParseEnv reads a delimited explanatory table from r.
func ParseEnv(r io.Reader, delim rune) (*EnvTable, error) {
	records, err := readRecords(r, delim)
	if err != nil {
		return nil, err
	}

	vars := make([]string, len(records[0])-1)
	for j, name := range records[0][1:] {
		vars[j] = strings.TrimSpace(name)
	}
	if err := uniqueIDs("variable", vars); err != nil {
		return nil, err
	}

	sites := make([]string, 0, len(records)-1)
	cells := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(vars)+1 {
			return nil, fmt.Errorf("%w: row %q has %d cells, want %d", ErrMalformedInput, rec[0], len(rec)-1, len(vars))
		}
		sites = append(sites, strings.TrimSpace(rec[0]))
		row := make([]string, len(vars))
		for j, cell := range rec[1:] {
			row[j] = strings.TrimSpace(cell)
		}
		cells = append(cells, row)
	}
	if err := uniqueIDs("site", sites); err != nil {
		return nil, err
	}

	return &EnvTable{Sites: sites, Vars: vars, Cells: cells}, nil
}

// Align reorders the table's rows to match the given site order. Every
// requested site must be present; extra rows in the table are an error so
// that silent misalignment cannot slip through.
func (e *EnvTable) Align(sites []string) (*EnvTable, error) {
	index := make(map[string]int, len(e.Sites))
	for i, id := range e.Sites {
		index[id] = i
	}
	if len(e.Sites) != len(sites) {
		return nil, fmt.Errorf("%w: environment table has %d sites, community table has %d",
			ErrMalformedInput, len(e.Sites), len(sites))
	}

	cells := make([][]string, len(sites))
	for i, id := range sites {
		at, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: site %q missing from environment table", ErrMalformedInput, id)
		}
		cells[i] = e.Cells[at]
	}

	return &EnvTable{
		Sites: append([]string(nil), sites...),
		Vars:  append([]string(nil), e.Vars...),
		Cells: cells,
	}, nil
}

// NumericColumn parses variable j as float64s. The second return reports
// whether every cell parsed; callers treat non-numeric columns as
// categorical factors.
func (e *EnvTable) NumericColumn(j int) ([]float64, bool) {
	out := make([]float64, len(e.Cells))
	for i, row := range e.Cells {
		v, err := strconv.ParseFloat(row[j], 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Column returns variable j's raw cells.
func (e *EnvTable) Column(j int) []string {
	out := make([]string, len(e.Cells))
	for i, row := range e.Cells {
		out[i] = row[j]
	}
	return out
}
