// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package comm

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads a delimited community table from path. The delimiter is chosen
// by extension: tab for .tsv and .tab, comma otherwise. The first header
// cell names the identifier column and is ignored; the remaining header
// cells are species identifiers; each data row starts with a site identifier.
func Load(path string) (*Table, error) {
	return LoadDelim(path, delimiterFor(path))
}

// LoadDelim is Load with an explicit delimiter, for inputs whose extension
// does not reflect their format.
func LoadDelim(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f, delim)
	if err != nil {
		return nil, fmt.Errorf("parsing table %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a delimited community table from r.
func Parse(r io.Reader, delim rune) (*Table, error) {
	records, err := readRecords(r, delim)
	if err != nil {
		return nil, err
	}

	species := make([]string, len(records[0])-1)
	for j, name := range records[0][1:] {
		species[j] = strings.TrimSpace(name)
	}

	sites := make([]string, 0, len(records)-1)
	values := make([][]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		sites = append(sites, strings.TrimSpace(rec[0]))
		row := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: non-numeric value %q at row %q column %q",
					ErrMalformedInput, cell, rec[0], species[j])
			}
			row[j] = v
		}
		values = append(values, row)
	}

	return NewTable(sites, species, values)
}

func readRecords(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", ErrMalformedInput)
	}
	if len(records[0]) < 2 {
		return nil, fmt.Errorf("%w: header must name an identifier column and at least one attribute", ErrMalformedInput)
	}
	return records, nil
}

func delimiterFor(path string) rune {
	switch filepath.Ext(path) {
	case ".tsv", ".tab":
		return '\t'
	}
	return ','
}
