// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/internal/envfit"
	"github.com/pdiddy/ordination-engine/internal/ordination"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

var envfitCmd = &cobra.Command{
	Use:   "envfit [result-file]",
	Short: "Relate environmental variables to ordination axes",
	Long: `Envfit aligns an explanatory table to a result file by site
identifier and reports, per variable, either axis correlations and a
multiple R2 (numeric columns) or level centroids and an among-level R2
(categorical columns). The ordination itself is never recomputed and the
covariates never enter it.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvfit,
}

func init() {
	envfitCmd.Flags().String("env", "", "explanatory table file (required)")
	envfitCmd.Flags().String("delimiter", "auto", "explanatory table delimiter: auto, comma, or tab")
	envfitCmd.Flags().String("axes", "1,2", "axes to fit against")
	envfitCmd.Flags().Bool("json", false, "output the fit as JSON")

	envfitCmd.MarkFlagRequired("env")

	rootCmd.AddCommand(envfitCmd)
}

func runEnvfit(cmd *cobra.Command, args []string) error {
	res, err := ordination.ReadResult(args[0])
	if err != nil {
		return err
	}

	envPath, _ := cmd.Flags().GetString("env")
	env, err := loadEnvTable(cmd, envPath)
	if err != nil {
		return err
	}

	axesStr, _ := cmd.Flags().GetString("axes")
	axes, err := ordination.ParseAxes(axesStr)
	if err != nil {
		return err
	}

	scores, err := ordination.Scores(res, types.ScoreSites, axes)
	if err != nil {
		return err
	}

	fit, err := envfit.Run(scores, env)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fit)
	}

	printFit(fit)
	return nil
}

// loadEnvTable reads an explanatory table honoring the --delimiter flag.
func loadEnvTable(cmd *cobra.Command, path string) (*comm.EnvTable, error) {
	mode, _ := cmd.Flags().GetString("delimiter")
	switch mode {
	case "", "auto":
		return comm.LoadEnv(path)
	case "comma":
		return comm.LoadEnvDelim(path, ',')
	case "tab":
		return comm.LoadEnvDelim(path, '\t')
	}
	return nil, fmt.Errorf("unsupported delimiter %q (use auto, comma, or tab)", mode)
}

func printFit(fit *envfit.Fit) {
	if len(fit.Vectors) > 0 {
		fmt.Printf("%-16s", "vector")
		for _, name := range fit.AxisNames {
			fmt.Printf("  %10s", name)
		}
		fmt.Printf("  %8s\n", "r2")
		fmt.Println(strings.Repeat("-", 16+12*len(fit.AxisNames)+10))
		for _, v := range fit.Vectors {
			fmt.Printf("%-16s", v.Name)
			for _, c := range v.Corr {
				fmt.Printf("  %10.4f", c)
			}
			fmt.Printf("  %8.4f\n", v.R2)
		}
	}

	for _, f := range fit.Factors {
		fmt.Printf("\nfactor %s (r2 %.4f)\n", f.Name, f.R2)
		for _, level := range f.Levels {
			fmt.Printf("  %-14s n=%-3d centroid", level.Level, level.N)
			for _, c := range level.Centroid {
				fmt.Printf("  %10.4f", c)
			}
			fmt.Println()
		}
	}
}
