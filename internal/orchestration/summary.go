package orchestration

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agbru/mfmprime/internal/cli"
	"github.com/agbru/mfmprime/internal/ui"
	"github.com/agbru/mfmprime/pkg/models"
)

const summaryColumnGap = 3

// PrintSummary displays the records of a completed sweep as an aligned table
// followed by the best prime fraction and the total time.
//
// Parameters:
//   - records: The sweep records, K-ascending.
//   - out: The io.Writer for the summary report.
func PrintSummary(records []models.SweepRecord, out io.Writer) {
	fmt.Fprintf(out, "\n--- Sweep Summary ---\n")
	if len(records) == 0 {
		fmt.Fprintf(out, "No K value was processed.\n")
		return
	}

	header := []string{"K", "Prime count", "Fraction", "Time"}
	rows := make([][]string, len(records))
	best := records[0]
	var total float64
	for i, r := range records {
		if r.PrimeFraction > best.PrimeFraction {
			best = r
		}
		total += r.TimeSec
		rows[i] = []string{
			strconv.Itoa(r.K),
			strconv.Itoa(r.PrimeCount),
			fmt.Sprintf("%.4f", r.PrimeFraction),
			formatSeconds(r.TimeSec),
		}
	}

	// Widths are measured on the plain cells; colour codes wrap only the
	// cell text so they never count toward a column.
	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for c, cell := range row {
			widths[c] = max(widths[c], utf8.RuneCountInString(cell))
		}
	}
	writeRow(out, header, widths, func(int) string { return ui.ColorUnderline() })
	rowColours := []string{ui.ColorBlue(), "", "", ui.ColorYellow()}
	for _, row := range rows {
		writeRow(out, row, widths, func(c int) string { return rowColours[c] })
	}

	fmt.Fprintf(out, "\nHighest prime fraction: %s%.4f%s at K=%d. Total time: %s.\n",
		ui.ColorGreen(), best.PrimeFraction, ui.ColorReset(), best.K, formatSeconds(total))
}

// writeRow prints one table line, each cell left-aligned to its column width
// and separated by summaryColumnGap spaces.
func writeRow(out io.Writer, cells []string, widths []int, colour func(int) string) {
	var b strings.Builder
	for c, cell := range cells {
		if c > 0 {
			b.WriteString(strings.Repeat(" ", summaryColumnGap))
		}
		pad := ""
		if c < len(cells)-1 {
			pad = strings.Repeat(" ", widths[c]-utf8.RuneCountInString(cell))
		}
		if code := colour(c); code != "" {
			b.WriteString(code + cell + ui.ColorReset() + pad)
		} else {
			b.WriteString(cell + pad)
		}
	}
	b.WriteByte('\n')
	io.WriteString(out, b.String())
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	if d == 0 {
		return "< 1µs"
	}
	return cli.FormatExecutionDuration(d)
}
