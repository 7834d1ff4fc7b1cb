package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/agbru/mfmprime/internal/config"
	"github.com/agbru/mfmprime/internal/ui"
	"github.com/agbru/mfmprime/pkg/models"
)

// PrintExecutionConfig displays the sweep parameters before it starts.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	ks := make([]string, len(cfg.KValues))
	for i, k := range cfg.KValues {
		ks[i] = strconv.Itoa(k)
	}
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Sweeping K in {%s%s%s} over n = 1..%s%d%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), strings.Join(ks, ", "), ui.ColorReset(),
		ui.ColorMagenta(), cfg.NMax, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Correction: policy=%s%s%s, basis=%s%s%s, engine=%s%s%s (DCT threshold K=%d).\n",
		ui.ColorCyan(), cfg.Policy, ui.ColorReset(),
		ui.ColorCyan(), cfg.Basis, ui.ColorReset(),
		ui.ColorCyan(), cfg.Engine, ui.ColorReset(), cfg.DCTThreshold)
	fmt.Fprintf(out, "Primality: %s%s%s (%d rounds). Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), cfg.PrimeTest, ui.ColorReset(), cfg.PrimeRounds,
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode displays whether the K values run one after another or
// concurrently.
func PrintExecutionMode(cfg config.AppConfig, out io.Writer) {
	mode := "Sequential sweep"
	if cfg.Parallel && len(cfg.KValues) > 1 {
		mode = fmt.Sprintf("Concurrent sweep of %s%d%s K values", ui.ColorGreen(), len(cfg.KValues), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// PrintRecordsJSON writes the records as an indented JSON array.
func PrintRecordsJSON(out io.Writer, records []models.SweepRecord) error {
	if records == nil {
		records = []models.SweepRecord{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
