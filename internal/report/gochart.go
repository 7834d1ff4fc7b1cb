package report

import (
	"math"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type gochartPlotter struct{}

func (gochartPlotter) Name() string { return BackendGochart }

// Render draws the figure with go-chart. Output is always PNG; go-chart has
// a single dot glyph so the marker shape is not honoured.
func (gochartPlotter) Render(fig Figure, path string) error {
	c := drawing.Color{R: fig.Style.R, G: fig.Style.G, B: fig.Style.B, A: 255}
	graph := chart.Chart{
		Title:  fig.Title,
		Width:  800,
		Height: 500,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  fig.XLabel,
			Range: paddedRange(fig.X),
		},
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Range: paddedRange(fig.Y),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fig.YLabel,
				XValues: fig.X,
				YValues: fig.Y,
				Style: chart.Style{
					StrokeColor: c,
					StrokeWidth: 2.0,
					DotColor:    c,
					DotWidth:    4.0,
				},
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// paddedRange returns a fixed axis range around values. go-chart rejects a
// zero-width range, which a single K or a constant column would produce.
func paddedRange(values []float64) *chart.ContinuousRange {
	if len(values) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(math.Abs(hi)*0.05, 1e-3)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
