// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ordplot renders score tables as 2-D ordination diagrams via
// gonum/plot. A Request is built once (layers, geometry, limits, title)
// and rendered in one call; re-plotting a different layer combination
// needs only a new Request over the same result, never a recomputation.
// See docs/ARCHITECTURE § Plotting.
package ordplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pdiddy/ordination-engine/internal/ordination"
)

// Geom selects how a layer is drawn.
type Geom string

const (
	// GeomPoints draws one marker per entity.
	GeomPoints Geom = "points"

	// GeomLabels draws each entity's identifier as text at its position.
	GeomLabels Geom = "labels"
)

// ParseGeom validates a geometry selector.
func ParseGeom(s string) (Geom, error) {
	switch Geom(s) {
	case GeomPoints, GeomLabels:
		return Geom(s), nil
	}
	return "", fmt.Errorf("unsupported geometry %q (use points or labels)", s)
}

// Layer is one score table drawn with one geometry. The first two columns
// of the table provide the x and y coordinates.
type Layer struct {
	Scores *ordination.ScoreTable
	Geom   Geom
}

// Limits optionally overrides one axis's range, for consistent scaling
// across plots of the same data.
type Limits struct {
	Min, Max float64
}

// Request describes one plot: any combination of site and species layers
// over the same axis pair, with optional title and limit overrides.
type Request struct {
	Title  string
	XLabel string
	YLabel string
	Layers []Layer
	XLim   *Limits
	YLim   *Limits
}

// layerPalette gives sites and species visually distinct defaults.
var layerPalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
}

// Render builds the plot for a request without writing it anywhere.
func Render(req Request) (*plot.Plot, error) {
	if len(req.Layers) == 0 {
		return nil, fmt.Errorf("plot request has no layers")
	}
	for _, layer := range req.Layers {
		if len(layer.Scores.Axes) < 2 {
			return nil, fmt.Errorf("plotting needs 2 axes, layer has %d", len(layer.Scores.Axes))
		}
	}

	p := plot.New()
	p.Title.Text = req.Title
	p.X.Label.Text = req.XLabel
	p.Y.Label.Text = req.YLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = req.Layers[0].Scores.AxisNames[0]
	}
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = req.Layers[0].Scores.AxisNames[1]
	}

	for i, layer := range req.Layers {
		tint := layerPalette[i%len(layerPalette)]
		if err := addLayer(p, layer, tint); err != nil {
			return nil, err
		}
	}

	if req.XLim != nil {
		p.X.Min, p.X.Max = req.XLim.Min, req.XLim.Max
	}
	if req.YLim != nil {
		p.Y.Min, p.Y.Max = req.YLim.Min, req.YLim.Max
	}

	return p, nil
}

// Save renders the request and writes it to path. The image format follows
// the extension (.png, .svg, .pdf, ...).
func Save(req Request, widthCm, heightCm float64, path string) error {
	p, err := Render(req)
	if err != nil {
		return err
	}
	if widthCm <= 0 {
		widthCm = 18
	}
	if heightCm <= 0 {
		heightCm = 14
	}
	if err := p.Save(vg.Length(widthCm)*vg.Centimeter, vg.Length(heightCm)*vg.Centimeter, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}

func addLayer(p *plot.Plot, layer Layer, tint color.RGBA) error {
	xys := make(plotter.XYs, len(layer.Scores.IDs))
	for i, row := range layer.Scores.Coords {
		xys[i].X = row[0]
		xys[i].Y = row[1]
	}

	switch layer.Geom {
	case GeomPoints, "":
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("building scatter layer: %w", err)
		}
		scatter.GlyphStyle.Color = tint
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
	case GeomLabels:
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    xys,
			Labels: append([]string(nil), layer.Scores.IDs...),
		})
		if err != nil {
			return fmt.Errorf("building label layer: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = tint
		}
		p.Add(labels)
	default:
		return fmt.Errorf("unsupported geometry %q", layer.Geom)
	}
	return nil
}
