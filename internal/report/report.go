// Package report persists the outcome of a sweep: the results table as CSV
// and the two K-indexed plots as PNG images.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/pkg/models"
)

// Paths holds the destinations of the report files.
type Paths struct {
	CSV          string
	TimePlot     string
	FractionPlot string
}

// WriteCSV writes the records to path under models.CSVHeader, one row per
// record in the given order. Failures are returned as apperrors.ReportError.
func WriteCSV(path string, records []models.SweepRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.ReportError{Path: path, Cause: err}
	}
	if err := EncodeCSV(f, records); err != nil {
		_ = f.Close()
		return apperrors.ReportError{Path: path, Cause: err}
	}
	if err := f.Close(); err != nil {
		return apperrors.ReportError{Path: path, Cause: err}
	}
	return nil
}

// EncodeCSV writes the header and the records to w.
func EncodeCSV(w io.Writer, records []models.SweepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.CSVRow()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Publish writes the CSV and, when plotter is non-nil, both plots. A
// "Saved ..." line is printed to out after each file.
func Publish(records []models.SweepRecord, paths Paths, plotter Plotter, out io.Writer) error {
	if err := WriteCSV(paths.CSV, records); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved analysis to %s\n", paths.CSV)

	if plotter == nil {
		return nil
	}
	if err := renderTo(plotter, TimeFigure(records), paths.TimePlot); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved time plot to %s\n", paths.TimePlot)

	if err := renderTo(plotter, FractionFigure(records), paths.FractionPlot); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved prime fraction plot to %s\n", paths.FractionPlot)
	return nil
}

func renderTo(p Plotter, fig Figure, path string) error {
	if err := p.Render(fig, path); err != nil {
		return apperrors.ReportError{Path: path, Cause: err}
	}
	return nil
}
