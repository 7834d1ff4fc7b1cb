package cli

import (
	"fmt"
	"time"
)

// maxETA caps the displayed estimate.
const maxETA = 24 * time.Hour

// ProgressWithETA extends ProgressState with an estimate of the remaining
// time, derived from the average progress rate since the start.
type ProgressWithETA struct {
	*ProgressState
	numTasks     int
	startTime    time.Time
	progressRate float64 // average progress per second
}

// NewProgressWithETA creates a tracker for numTasks slots, starting now.
func NewProgressWithETA(numTasks int) *ProgressWithETA {
	return &ProgressWithETA{
		ProgressState: NewProgressState(numTasks),
		numTasks:      numTasks,
		startTime:     time.Now(),
	}
}

// UpdateWithETA records a slot's progress and returns the new average
// progress and the estimated remaining time.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	avg := p.CalculateAverage()
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 && avg > 0 {
		p.progressRate = avg / elapsed
	}
	return avg, p.GetETA()
}

// GetETA returns the estimated remaining time, 0 while no rate is known.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1.0 - p.CalculateAverage()
	if remaining <= 0 {
		return 0
	}
	seconds := remaining / p.progressRate
	if seconds > maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(seconds * float64(time.Second))
}

// FormatETA renders an estimate compactly ("45s", "2m30s", "1h15m").
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// FormatProgressBarWithETA renders "xx.xx% [bar] ETA: ..." for a progress.
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
