package calibration

// findCrossover returns the smallest measured K from which the transform
// engine wins at every larger measured K, and the share of successful
// measurements that agree with that split.
//
// When the transform never wins at the largest K, the threshold is nMax+1,
// which keeps the auto engine on the direct path. ok is false when no
// measurement succeeded.
func findCrossover(results []calibrationResult, nMax int) (threshold int, confidence float64, ok bool) {
	var valid []calibrationResult
	for _, r := range results {
		if r.Err == nil {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return 0, 0, false
	}

	threshold = nMax + 1
	for i := len(valid) - 1; i >= 0; i-- {
		if !valid[i].TransformWins() {
			break
		}
		threshold = valid[i].K
	}

	agree := 0
	for _, r := range valid {
		if r.TransformWins() == (r.K >= threshold) {
			agree++
		}
	}
	return threshold, float64(agree) / float64(len(valid)), true
}
