/*
Package models defines the shared data structures produced by a sweep.

These models are used for:
- **Reporting**: rows of the CSV table and points of the plots.
- **API responses**: the JSON body returned by the HTTP server and -json mode.
*/
package models

import (
	"fmt"
	"strconv"
)

// CSVHeader is the header row of the results table.
var CSVHeader = []string{"K", "Prime_Count", "Prime_Fraction", "Time_Sec"}

// SweepRecord is the outcome of one sweep iteration.
type SweepRecord struct {
	K             int     `json:"k"`              // Number of correction coefficients.
	PrimeCount    int     `json:"prime_count"`    // Corrected terms found prime.
	PrimeFraction float64 `json:"prime_fraction"` // PrimeCount / N_MAX.
	TimeSec       float64 `json:"time_sec"`       // Wall-clock seconds of the pass.
}

// NewSweepRecord builds a record, deriving PrimeFraction from the count and
// the sequence length.
func NewSweepRecord(k, primeCount, nMax int, timeSec float64) SweepRecord {
	fraction := 0.0
	if nMax > 0 {
		fraction = float64(primeCount) / float64(nMax)
	}
	return SweepRecord{K: k, PrimeCount: primeCount, PrimeFraction: fraction, TimeSec: timeSec}
}

// CSVRow returns the record in CSVHeader column order.
func (r SweepRecord) CSVRow() []string {
	return []string{
		strconv.Itoa(r.K),
		strconv.Itoa(r.PrimeCount),
		strconv.FormatFloat(r.PrimeFraction, 'f', -1, 64),
		strconv.FormatFloat(r.TimeSec, 'f', -1, 64),
	}
}

// SummaryLine is the one-line console report of the record.
func (r SweepRecord) SummaryLine() string {
	return fmt.Sprintf("K=%d, prime_count=%d, fraction=%.4f, time=%.2fs",
		r.K, r.PrimeCount, r.PrimeFraction, r.TimeSec)
}
