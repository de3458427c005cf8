// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ordination-engine/internal/archive"
	"github.com/pdiddy/ordination-engine/internal/ordination"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the SQLite catalog of past runs (list, show, delete, export)",
	Long: `Archive manages a local SQLite catalog of completed ordination runs,
recorded by "run --archive". Use subcommands to list runs, inspect one,
remove one, or export an archived run back into a result file usable by the
scores, plot, and envfit stages.`,
}

// --- list subcommand ---

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE:  runArchiveList,
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("Archive is empty.")
		return nil
	}
	fmt.Printf("%-4s  %-20s  %-6s  %-10s  %-9s  %-6s  %s\n",
		"ID", "Created", "Method", "Transform", "Distance", "Axes", "Input")
	for _, r := range runs {
		distance := string(r.Distance)
		if distance == "" {
			distance = "-"
		}
		fmt.Printf("%-4d  %-20s  %-6s  %-10s  %-9s  %-6d  %s\n",
			r.ID, r.Created.Format(time.DateTime), r.Method, r.Transform, distance, r.Axes, r.Input)
	}
	return nil
}

// --- show subcommand ---

var archiveShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one archived run's summary and diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	res, summary, err := store.GetRun(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("run %d: %s on %s (%s)\n", summary.ID, summary.Method, summary.Input,
		summary.Created.Format(time.DateTime))
	fmt.Printf("  transform %s, %d axes, %d sites, %d species\n",
		summary.Transform, res.Axes, len(res.Sites), len(res.Species))
	for k, p := range res.Proportions {
		fmt.Printf("  %s: %.1f%% explained\n", res.AxisName(k+1), 100*p)
	}
	if res.Method == types.MethodNMDS {
		fmt.Printf("  distance %s, stress %.4f, converged %v\n",
			res.Distance, res.Diagnostics.Stress, res.Diagnostics.Converged)
	}
	return nil
}

// --- delete subcommand ---

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete an archived run and its scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveDelete,
}

func runArchiveDelete(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteRun(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted run %d\n", id)
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export an archived run back into a result file",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	res, _, err := store.GetRun(context.Background(), id)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		ext := "yaml"
		if asJSON {
			ext = "json"
		}
		out = fmt.Sprintf("run-%d.%s", id, ext)
	}

	if asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling run %d: %w", id, err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
	} else if err := ordination.WriteResult(out, res); err != nil {
		return err
	}
	fmt.Printf("Exported run %d to %s\n", id, out)
	return nil
}

// --- shared helpers ---

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	dir, _ := cmd.Flags().GetString("archive-dir")
	maxResults, _ := cmd.Flags().GetInt("limit")
	return archive.NewStore(types.ArchiveConfig{ArchiveDir: dir, MaxResults: maxResults})
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run id %q", s)
	}
	return id, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	archiveCmd.PersistentFlags().String("archive-dir", "archive", "directory containing the archive database")
	archiveCmd.PersistentFlags().Int("limit", 0, "maximum runs to list (0 = default)")

	archiveListCmd.Flags().Bool("json", false, "output the listing as JSON")
	archiveExportCmd.Flags().String("out", "", "output result file (default: run-<id>.yaml)")
	archiveExportCmd.Flags().Bool("json", false, "export as JSON instead of YAML")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveDeleteCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
