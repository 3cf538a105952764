package render

import (
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLMap renders an interactive scatter map of the solution. Each cluster is
// its own series so it can be toggled from the legend; centers form a last
// series drawn on top.
func HTMLMap(w io.Writer, title string, sol *districting.Solution) error {
	if sol == nil || len(sol.Clusters) == 0 {
		return fmt.Errorf("html map: %w", districting.ErrEmptySolution)
	}

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLong, maxLong := math.Inf(1), math.Inf(-1)
	for _, c := range sol.Clusters {
		for _, m := range c.Members {
			minLat, maxLat = math.Min(minLat, m.Lat), math.Max(maxLat, m.Lat)
			minLong, maxLong = math.Min(minLong, m.Long), math.Max(maxLong, m.Long)
		}
	}
	padLat := math.Max((maxLat-minLat)*0.05, 0.001)
	padLong := math.Max((maxLong-minLong)*0.05, 0.001)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("clusters=%d points=%d", len(sol.Clusters), sol.PointCount())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLong - padLong, Max: maxLong + padLong, Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat - padLat, Max: maxLat + padLat, Name: "Latitude", NameLocation: "middle", NameGap: 40}),
	)

	centers := make([]opts.ScatterData, 0, len(sol.Clusters))
	for i, c := range sol.Clusters {
		data := make([]opts.ScatterData, 0, len(c.Members))
		for _, m := range c.Members {
			data = append(data, opts.ScatterData{Name: fmt.Sprintf("point %d", m.ID), Value: []interface{}{m.Long, m.Lat, m.Demand}})
		}
		centers = append(centers, opts.ScatterData{
			Name:  fmt.Sprintf("center %d", c.Center.ID),
			Value: []interface{}{c.Center.Long, c.Center.Lat, c.Load},
		})
		scatter.AddSeries(clusterLabel(i, c), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ClusterColorHex(i)}))
	}
	scatter.AddSeries("centers", centers,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 16}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#000000"}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render html map: %w", err)
	}
	return nil
}
