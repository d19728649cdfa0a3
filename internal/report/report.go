// Package report writes HTML pages of stored runs and aperture scans
// using go-echarts.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/beamkit/beamkit/internal/analysis"
	"github.com/beamkit/beamkit/internal/storage"
)

// Tracking renders the per-turn series of a stored run as one HTML
// page with survival, size, emittance, and centroid charts.
func Tracking(w io.Writer, meta *storage.RunMeta, td *storage.TurnData) error {
	turns := make([]string, td.Len())
	for i, t := range td.Turn {
		turns[i] = strconv.Itoa(t)
	}
	subtitle := fmt.Sprintf("run=%s lattice=%s particles=%d survivors=%d",
		meta.ID, meta.Lattice, meta.Particles, meta.Survivors)

	alive := newLineChart("Beam Survival", subtitle, "turn", "particles")
	aliveVals := make([]float64, len(td.Alive))
	for i, a := range td.Alive {
		aliveVals[i] = float64(a)
	}
	alive.SetXAxis(turns).AddSeries("alive", lineData(aliveVals))

	size := newLineChart("Beam Size", subtitle, "turn", "m")
	size.SetXAxis(turns).
		AddSeries("std_x", lineData(td.StdX)).
		AddSeries("std_y", lineData(td.StdY))

	emit := newLineChart("Emittance", subtitle, "turn", "m rad")
	emit.SetXAxis(turns).
		AddSeries("emit_x", lineData(td.EmitX)).
		AddSeries("emit_y", lineData(td.EmitY))

	centroid := newLineChart("Centroid", subtitle, "turn", "m")
	centroid.SetXAxis(turns).
		AddSeries("mean_x", lineData(td.MeanX)).
		AddSeries("mean_y", lineData(td.MeanY))

	page := components.NewPage()
	page.AddCharts(alive, size, emit, centroid)
	return page.Render(w)
}

// Aperture renders a dynamic aperture boundary as an x-y scatter, in
// millimetres.
func Aperture(w io.Writer, latName string, points []analysis.DAPoint, cfg analysis.DAConfig) error {
	data := make([]opts.ScatterData, 0, len(points))
	maxAbs := 0.0
	for _, p := range points {
		x := p.Radius * math.Cos(p.Angle) * 1e3
		y := p.Radius * math.Sin(p.Angle) * 1e3
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Dynamic Aperture", Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Dynamic Aperture",
			Subtitle: fmt.Sprintf("lattice=%s turns=%d rays=%d delta=%g", latName, cfg.Turns, cfg.Angles, cfg.Delta),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "x (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "y (mm)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("boundary", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	return scatter.Render(w)
}

// Spectrum renders horizontal and vertical tune spectra as one HTML
// line chart. Bin k of a length-n record sits at tune k/n.
func Spectrum(w io.Writer, latName string, magsX, magsY []float64, n int) error {
	bins := len(magsX)
	if len(magsY) > bins {
		bins = len(magsY)
	}
	tunes := make([]string, bins)
	for k := range tunes {
		tunes[k] = strconv.FormatFloat(float64(k)/float64(n), 'f', 4, 64)
	}

	line := newLineChart("Tune Spectrum", fmt.Sprintf("lattice=%s turns=%d", latName, n), "tune", "amplitude")
	line.SetXAxis(tunes).
		AddSeries("horizontal", lineData(magsX)).
		AddSeries("vertical", lineData(magsY))
	return line.Render(w)
}

func newLineChart(title, subtitle, xName, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

func lineData(vals []float64) []opts.LineData {
	data := make([]opts.LineData, len(vals))
	for i, v := range vals {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
