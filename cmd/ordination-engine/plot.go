// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ordination-engine/internal/ordination"
	"github.com/pdiddy/ordination-engine/internal/ordplot"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

var plotCmd = &cobra.Command{
	Use:   "plot [result-file]",
	Short: "Render a result file as a 2-D ordination diagram",
	Long: `Plot draws site and/or species scores from a result file onto a
2-axis scatter. Layers render as point markers or text labels; axis limits
and the title can be fixed for consistent scaling across plots. Any layer
combination re-renders from the same result without recomputation.

The output format follows the file extension: .png, .svg, or .pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().String("sites", "points", "site layer geometry: points, labels, or off")
	plotCmd.Flags().String("species", "off", "species layer geometry: points, labels, or off")
	plotCmd.Flags().String("axes", "1,2", "axis pair to draw, e.g. 1,2 or 1,3")
	plotCmd.Flags().String("title", "", "plot title")
	plotCmd.Flags().String("xlim", "", "x axis range override, e.g. -2,2")
	plotCmd.Flags().String("ylim", "", "y axis range override, e.g. -2,2")
	plotCmd.Flags().Float64("width", 18, "canvas width in centimeters")
	plotCmd.Flags().Float64("height", 14, "canvas height in centimeters")
	plotCmd.Flags().String("out", "ordination.svg", "output image path")

	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	res, err := ordination.ReadResult(args[0])
	if err != nil {
		return err
	}

	axesStr, _ := cmd.Flags().GetString("axes")
	axes, err := ordination.ParseAxes(axesStr)
	if err != nil {
		return err
	}
	if len(axes) != 2 {
		return fmt.Errorf("plotting needs exactly 2 axes, got %d", len(axes))
	}

	var layers []ordplot.Layer
	for _, spec := range []struct {
		flag string
		kind types.ScoreKind
	}{
		{"sites", types.ScoreSites},
		{"species", types.ScoreSpecies},
	} {
		mode, _ := cmd.Flags().GetString(spec.flag)
		if mode == "off" || mode == "" {
			continue
		}
		geom, err := ordplot.ParseGeom(mode)
		if err != nil {
			return fmt.Errorf("--%s: %w", spec.flag, err)
		}
		scores, err := ordination.Scores(res, spec.kind, axes)
		if err != nil {
			return err
		}
		layers = append(layers, ordplot.Layer{Scores: scores, Geom: geom})
	}
	if len(layers) == 0 {
		return fmt.Errorf("both layers are off, nothing to draw")
	}

	pcfg := plotConfig(cmd)
	req := ordplot.Request{
		Title:  pcfg.Title,
		XLabel: axisLabel(res, axes[0]),
		YLabel: axisLabel(res, axes[1]),
		Layers: layers,
	}

	if req.XLim, err = parseLimits(cmd, "xlim"); err != nil {
		return err
	}
	if req.YLim, err = parseLimits(cmd, "ylim"); err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")

	if err := ordplot.Save(req, pcfg.WidthCm, pcfg.HeightCm, out); err != nil {
		return err
	}
	fmt.Printf("Plot written to %s\n", out)
	return nil
}

// plotConfig assembles the plot configuration from flags, falling back to
// values from the viper config file where flags are unset.
func plotConfig(cmd *cobra.Command) types.PlotConfig {
	cfg := types.PlotConfig{}
	cfg.Title, _ = cmd.Flags().GetString("title")
	cfg.WidthCm, _ = cmd.Flags().GetFloat64("width")
	cfg.HeightCm, _ = cmd.Flags().GetFloat64("height")

	if !cmd.Flags().Changed("title") && viper.IsSet("plot.title") {
		cfg.Title = viper.GetString("plot.title")
	}
	if !cmd.Flags().Changed("width") && viper.IsSet("plot.width_cm") {
		cfg.WidthCm = viper.GetFloat64("plot.width_cm")
	}
	if !cmd.Flags().Changed("height") && viper.IsSet("plot.height_cm") {
		cfg.HeightCm = viper.GetFloat64("plot.height_cm")
	}
	return cfg
}

// axisLabel annotates PCA/CA axes with their proportion explained.
func axisLabel(res *types.Result, axis int) string {
	name := res.AxisName(axis)
	if axis-1 < len(res.Proportions) {
		return fmt.Sprintf("%s (%.1f%%)", name, 100*res.Proportions[axis-1])
	}
	return name
}

func parseLimits(cmd *cobra.Command, flag string) (*ordplot.Limits, error) {
	raw, _ := cmd.Flags().GetString(flag)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("--%s must be min,max, got %q", flag, raw)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	if max <= min {
		return nil, fmt.Errorf("--%s: max %v not greater than min %v", flag, max, min)
	}
	return &ordplot.Limits{Min: min, Max: max}, nil
}
