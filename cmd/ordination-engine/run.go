// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ordination-engine/internal/archive"
	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/internal/ordination"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [table-file]",
	Short: "Run an ordination over a community table",
	Long: `Run loads a delimited sites-by-species table, applies the selected
standardization, runs the selected ordination method, prints a summary, and
writes a YAML result file for the scores, plot, and envfit stages.

NMDS searches the configured number of random restarts and always keeps the
minimal-stress configuration; a run reporting high stress is still a valid
result, merely flagged by its stress value.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("method", "pca", "ordination method: pca, ca, or nmds")
	runCmd.Flags().String("transform", "none", "standardization: none, sqrt, total, hellinger, or wisconsin")
	runCmd.Flags().String("distance", "bray", "NMDS dissimilarity: bray, jaccard, euclidean, manhattan, or gower")
	runCmd.Flags().Int("dimensions", 0, "NMDS embedding dimensions (default 2)")
	runCmd.Flags().Int("restarts", 0, "NMDS random restarts (default 20)")
	runCmd.Flags().Int64("seed", 0, "NMDS random seed for reproducible runs")
	runCmd.Flags().Int("max-iterations", 0, "NMDS iteration cap per restart (default 300)")
	runCmd.Flags().String("delimiter", "auto", "input delimiter: auto, comma, or tab")
	runCmd.Flags().String("out", "", "result file path (default: <table>.<method>.yaml)")
	runCmd.Flags().Bool("archive", false, "record the run in the SQLite archive")
	runCmd.Flags().String("archive-dir", "archive", "directory containing the archive database")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := ordinationConfig(cmd)
	if err != nil {
		return err
	}

	input := args[0]
	table, err := loadTable(cmd, input)
	if err != nil {
		return err
	}

	res, err := ordination.Run(table, cfg, os.Stdout)
	if err != nil {
		return err
	}

	printRunSummary(res, table)

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(res.Method) + ".yaml"
	}
	if err := ordination.WriteResult(out, res); err != nil {
		return err
	}
	fmt.Printf("Result written to %s\n", out)

	if archiveRun, _ := cmd.Flags().GetBool("archive"); archiveRun {
		archiveDir, _ := cmd.Flags().GetString("archive-dir")
		store, err := archive.NewStore(types.ArchiveConfig{ArchiveDir: archiveDir})
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.SaveRun(context.Background(), input, res)
		if err != nil {
			return err
		}
		fmt.Printf("Archived as run %d\n", id)
	}

	return nil
}

// loadTable reads a community table honoring the --delimiter flag.
func loadTable(cmd *cobra.Command, path string) (*comm.Table, error) {
	mode, _ := cmd.Flags().GetString("delimiter")
	switch mode {
	case "", "auto":
		return comm.Load(path)
	case "comma":
		return comm.LoadDelim(path, ',')
	case "tab":
		return comm.LoadDelim(path, '\t')
	}
	return nil, fmt.Errorf("unsupported delimiter %q (use auto, comma, or tab)", mode)
}

// ordinationConfig assembles the run configuration from flags, falling back
// to values from the viper config file where flags are unset.
func ordinationConfig(cmd *cobra.Command) (types.OrdinationConfig, error) {
	methodStr, _ := cmd.Flags().GetString("method")
	if !cmd.Flags().Changed("method") && viper.IsSet("ordination.method") {
		methodStr = viper.GetString("ordination.method")
	}
	method, err := types.ParseMethod(methodStr)
	if err != nil {
		return types.OrdinationConfig{}, err
	}

	transformStr, _ := cmd.Flags().GetString("transform")
	if !cmd.Flags().Changed("transform") && viper.IsSet("ordination.transform") {
		transformStr = viper.GetString("ordination.transform")
	}
	transform, err := types.ParseTransform(transformStr)
	if err != nil {
		return types.OrdinationConfig{}, err
	}

	distanceStr, _ := cmd.Flags().GetString("distance")
	if !cmd.Flags().Changed("distance") && viper.IsSet("ordination.distance") {
		distanceStr = viper.GetString("ordination.distance")
	}
	distance, err := types.ParseDistance(distanceStr)
	if err != nil {
		return types.OrdinationConfig{}, err
	}

	dimensions, _ := cmd.Flags().GetInt("dimensions")
	restarts, _ := cmd.Flags().GetInt("restarts")
	seed, _ := cmd.Flags().GetInt64("seed")
	maxIterations, _ := cmd.Flags().GetInt("max-iterations")

	return types.OrdinationConfig{
		Method:        method,
		Transform:     transform,
		Distance:      distance,
		Dimensions:    dimensions,
		Restarts:      restarts,
		Seed:          seed,
		MaxIterations: maxIterations,
	}, nil
}

func printRunSummary(res *types.Result, table *comm.Table) {
	fmt.Printf("%s: %d sites x %d species, %d axes\n",
		strings.ToUpper(string(res.Method)), table.NSites(), table.NSpecies(), res.Axes)

	if len(res.Proportions) > 0 {
		shown := len(res.Proportions)
		if shown > 4 {
			shown = 4
		}
		for k := 0; k < shown; k++ {
			fmt.Printf("  %s: %.1f%% explained\n", res.AxisName(k+1), 100*res.Proportions[k])
		}
	}
	if res.Method == types.MethodNMDS {
		fmt.Printf("  stress %.4f after %d restarts (converged: %v)\n",
			res.Diagnostics.Stress, res.Diagnostics.Restarts, res.Diagnostics.Converged)
	}
}
