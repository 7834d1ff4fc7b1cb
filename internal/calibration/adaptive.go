package calibration

import (
	"slices"

	"github.com/agbru/mfmprime/internal/correction"
)

// MaxCandidateK caps the K values timed by a full calibration. The direct
// engine is O(N·K), so larger K values only confirm the crossover.
const MaxCandidateK = 4096

// GenerateKCandidates returns the K values to time for a sequence of length
// nMax: powers of two from 2 up to min(nMax, MaxCandidateK), plus that bound
// itself when it is not a power of two.
func GenerateKCandidates(nMax int) []int {
	limit := min(nMax, MaxCandidateK)
	var ks []int
	for k := 2; k <= limit; k *= 2 {
		ks = append(ks, k)
	}
	if limit >= 2 && (len(ks) == 0 || ks[len(ks)-1] != limit) {
		ks = append(ks, limit)
	}
	return ks
}

// GenerateQuickKCandidates returns every other full candidate, keeping the
// largest so the upper end of the range is always measured.
func GenerateQuickKCandidates(nMax int) []int {
	full := GenerateKCandidates(nMax)
	var ks []int
	for i, k := range full {
		if i%2 == 0 || i == len(full)-1 {
			ks = append(ks, k)
		}
	}
	return ks
}

// EstimateDCTThreshold returns the threshold used without measurements,
// clamped to the sequence length.
func EstimateDCTThreshold(nMax int) int {
	return ValidateThreshold(correction.DefaultDCTThreshold, nMax)
}

// ValidateThreshold clamps a threshold into [1, nMax+1]. nMax+1 means the
// auto engine never selects the transform.
func ValidateThreshold(threshold, nMax int) int {
	return max(1, min(threshold, nMax+1))
}

// sortedUnique returns ks ascending without duplicates.
func sortedUnique(ks []int) []int {
	out := slices.Clone(ks)
	slices.Sort(out)
	return slices.Compact(out)
}
