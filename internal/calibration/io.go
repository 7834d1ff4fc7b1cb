package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/mfmprime/internal/cli"
	"github.com/agbru/mfmprime/internal/ui"
)

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, threshold int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sK%s\t│ %sDirect%s\t│ %sTransform%s\t│ %sFaster%s\n",
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s\t┼%s\t┼%s\t┼%s\n",
		strings.Repeat("─", 6), strings.Repeat("─", 12), strings.Repeat("─", 12), strings.Repeat("─", 16))
	for _, res := range results {
		direct := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		transform := direct
		faster := ""
		if res.Err == nil {
			direct = formatTrial(res.Direct)
			transform = formatTrial(res.Transform)
			faster = "direct"
			if res.TransformWins() {
				faster = "transform"
			}
		}
		if res.K == threshold {
			faster += fmt.Sprintf(" %s(Crossover)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%d%s\t│ %s%s%s\t│ %s%s%s\t│ %s\n",
			ui.ColorCyan(), res.K, ui.ColorReset(),
			ui.ColorYellow(), direct, ui.ColorReset(),
			ui.ColorYellow(), transform, ui.ColorReset(),
			faster)
	}
	tw.Flush()
}

func formatTrial(d time.Duration) string {
	if d < time.Microsecond {
		return "< 1µs"
	}
	return cli.FormatExecutionDuration(d)
}

// printRecommendation prints the flag value matching the crossover.
func printRecommendation(out io.Writer, threshold, nMax int, confidence float64) {
	if threshold > nMax {
		fmt.Fprintf(out, "\n%s✅ The direct engine is faster for every K at N=%d: %s-dct-threshold %d%s (confidence: %.0f%%)\n",
			ui.ColorGreen(), nMax, ui.ColorYellow(), threshold, ui.ColorReset(), confidence*100)
		return
	}
	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s-dct-threshold %d%s (confidence: %.0f%%)\n",
		ui.ColorGreen(), ui.ColorYellow(), threshold, ui.ColorReset(), confidence*100)
}
