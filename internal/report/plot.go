package report

import (
	"fmt"
	"slices"

	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/pkg/models"
)

// Plot backend names.
const (
	BackendGonum   = "gonum"
	BackendGochart = "gochart"
)

const xLabel = "Number of Fourier Coefficients (K)"

// Marker is the glyph drawn at each data point.
type Marker int

const (
	MarkerCircle Marker = iota
	MarkerSquare
)

// SeriesStyle is the backend-independent look of a figure's single series.
type SeriesStyle struct {
	R, G, B uint8
	Marker  Marker
}

var (
	blueCircles = SeriesStyle{B: 255, Marker: MarkerCircle}
	redSquares  = SeriesStyle{R: 255, Marker: MarkerSquare}
)

// Figure is one line chart of Y against X.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
	Style  SeriesStyle
}

// Plotter renders a figure to an image file. The format follows the file
// extension where the backend supports several.
type Plotter interface {
	Name() string
	Render(fig Figure, path string) error
}

var plotters = map[string]func() Plotter{
	BackendGonum:   func() Plotter { return gonumPlotter{} },
	BackendGochart: func() Plotter { return gochartPlotter{} },
}

// Backends returns the sorted names of the available plot backends.
func Backends() []string {
	names := make([]string, 0, len(plotters))
	for name := range plotters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewPlotter returns the plotter registered under name.
func NewPlotter(name string) (Plotter, error) {
	factory, ok := plotters[name]
	if !ok {
		return nil, apperrors.NewValidationError("plot-backend", fmt.Sprintf("unknown backend %q", name), name)
	}
	return factory(), nil
}

// TimeFigure plots Time_Sec against K.
func TimeFigure(records []models.SweepRecord) Figure {
	return Figure{
		Title:  "Computation Time vs. K",
		XLabel: xLabel,
		YLabel: "Computation Time (s)",
		X:      column(records, func(r models.SweepRecord) float64 { return float64(r.K) }),
		Y:      column(records, func(r models.SweepRecord) float64 { return r.TimeSec }),
		Style:  blueCircles,
	}
}

// FractionFigure plots Prime_Fraction against K.
func FractionFigure(records []models.SweepRecord) Figure {
	return Figure{
		Title:  "Prime Fraction vs. K",
		XLabel: xLabel,
		YLabel: "Fraction of Prime Outputs",
		X:      column(records, func(r models.SweepRecord) float64 { return float64(r.K) }),
		Y:      column(records, func(r models.SweepRecord) float64 { return r.PrimeFraction }),
		Style:  redSquares,
	}
}

func column(records []models.SweepRecord, f func(models.SweepRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = f(r)
	}
	return out
}
