// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ordination-engine/internal/ordination"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [result-file]",
	Short: "Extract site or species coordinates from a result file",
	Long: `Scores slices a result file into a plain coordinate table for the
chosen entity kind and axes, in the original input row order. Axis sets may
be sparse ("1,3"); indices beyond the result's computed rank are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().String("kind", "sites", "entity kind: sites or species")
	scoresCmd.Flags().String("axes", "1,2", "comma-separated 1-based axis indices")
	scoresCmd.Flags().String("format", "table", "output format: table, csv, json, or yaml")

	rootCmd.AddCommand(scoresCmd)
}

func runScores(cmd *cobra.Command, args []string) error {
	res, err := ordination.ReadResult(args[0])
	if err != nil {
		return err
	}

	kindStr, _ := cmd.Flags().GetString("kind")
	kind, err := types.ParseScoreKind(kindStr)
	if err != nil {
		return err
	}

	axesStr, _ := cmd.Flags().GetString("axes")
	axes, err := ordination.ParseAxes(axesStr)
	if err != nil {
		return err
	}

	table, err := ordination.Scores(res, kind, axes)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return writeScores(table, format)
}

func writeScores(table *ordination.ScoreTable, format string) error {
	switch format {
	case "table", "":
		fmt.Printf("%-20s", string(table.Kind))
		for _, name := range table.AxisNames {
			fmt.Printf("  %12s", name)
		}
		fmt.Println()
		for i, id := range table.IDs {
			fmt.Printf("%-20s", id)
			for _, v := range table.Coords[i] {
				fmt.Printf("  %12.4f", v)
			}
			fmt.Println()
		}
		return nil
	case "csv":
		w := csv.NewWriter(os.Stdout)
		header := append([]string{"id"}, table.AxisNames...)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		for i, id := range table.IDs {
			rec := make([]string, 0, len(table.Coords[i])+1)
			rec = append(rec, id)
			for _, v := range table.Coords[i] {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("writing CSV: %w", err)
			}
		}
		w.Flush()
		return w.Error()
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	case "yaml":
		data, err := yaml.Marshal(table)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	return fmt.Errorf("unsupported format %q: use table, csv, json, or yaml", format)
}
