package report

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type gonumPlotter struct{}

func (gonumPlotter) Name() string { return BackendGonum }

// Render draws the figure with gonum/plot; Save picks the encoder from the
// path extension (png, svg, pdf, ...).
func (gonumPlotter) Render(fig Figure, path string) error {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	points := make(plotter.XYs, len(fig.X))
	for i := range points {
		points[i].X = fig.X[i]
		points[i].Y = fig.Y[i]
	}

	line, scatter, err := plotter.NewLinePoints(points)
	if err != nil {
		return err
	}
	c := color.RGBA{R: fig.Style.R, G: fig.Style.G, B: fig.Style.B, A: 255}
	line.Color = c
	scatter.Color = c
	scatter.Radius = vg.Points(3)
	switch fig.Style.Marker {
	case MarkerSquare:
		scatter.Shape = draw.BoxGlyph{}
	default:
		scatter.Shape = draw.CircleGlyph{}
	}

	p.Add(plotter.NewGrid(), line, scatter)
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
