package render

import (
	"fmt"
	"io"

	"github.com/banshee-data/districting/internal/districting"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default PNG canvas size.
const (
	PlotWidth  = 10 * vg.Inch
	PlotHeight = 10 * vg.Inch
)

// PlotPNG draws one scatter series per cluster, longitude on X and latitude
// on Y, with each center marked by a larger triangle.
func PlotPNG(w io.Writer, title string, sol *districting.Solution) error {
	if sol == nil || len(sol.Clusters) == 0 {
		return fmt.Errorf("plot: %w", districting.ErrEmptySolution)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(plotter.NewGrid())

	centers := make(plotter.XYs, 0, len(sol.Clusters))
	for i, c := range sol.Clusters {
		pts := make(plotter.XYs, 0, len(c.Members))
		for _, m := range c.Members {
			pts = append(pts, plotter.XY{X: m.Long, Y: m.Lat})
		}
		centers = append(centers, plotter.XY{X: c.Center.Long, Y: c.Center.Lat})

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to create scatter for cluster %d: %w", i, err)
		}
		s.GlyphStyle.Color = ClusterColor(i)
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		if len(sol.Clusters) <= 20 {
			p.Legend.Add(clusterLabel(i, c), s)
		}
	}

	cs, err := plotter.NewScatter(centers)
	if err != nil {
		return fmt.Errorf("failed to create center scatter: %w", err)
	}
	cs.GlyphStyle.Radius = vg.Points(6)
	cs.GlyphStyle.Shape = draw.PyramidGlyph{}
	p.Add(cs)
	p.Legend.Add("centers", cs)
	p.Legend.Top = true

	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

func clusterLabel(i int, c *districting.Cluster) string {
	return fmt.Sprintf("cluster %d (center %d)", i, c.Center.ID)
}
