// The cli package provides the terminal front end of a sweep: the
// asynchronous spinner and progress bar, the execution banner, JSON output
// and shell completion scripts.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/agbru/mfmprime/internal/progress"
	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner,
// so that DisplayProgress can be tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation and clears its line.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState holds the progress of every slot of a sweep and averages
// them into the single value shown by the progress bar.
type ProgressState struct {
	progresses []float64
	numTasks   int
}

// NewProgressState creates a state tracking numTasks slots.
func NewProgressState(numTasks int) *ProgressState {
	return &ProgressState{
		progresses: make([]float64, numTasks),
		numTasks:   numTasks,
	}
}

// Update records a new progress value for a slot. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = min(max(value, 0), 1)
	}
}

// CalculateAverage computes the average progress across all slots.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numTasks == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numTasks)
}

// progressBar renders a textual progress bar of the given width.
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress renders a spinner and an averaged progress bar until
// progressChan is closed. It is meant to run in its own goroutine and is the
// only writer of out while it runs: updates carrying a Message are printed as
// a permanent line above the bar.
//
// Parameters:
//   - wg: Signalled when the display routine returns.
//   - progressChan: The channel receiving progress updates and messages.
//   - numTasks: The number of sweep slots contributing to the progress.
//   - out: The io.Writer to which the progress bar is rendered.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numTasks int, out io.Writer) {
	defer wg.Done()
	if numTasks <= 0 {
		for update := range progressChan {
			if update.Message != "" {
				fmt.Fprintln(out, update.Message)
			}
		}
		return
	}

	state := NewProgressWithETA(numTasks)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	running := true
	defer func() {
		if running {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	label := "Progress"
	if numTasks > 1 {
		label = "Sweep progress"
	}

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				running = false
				fmt.Fprintf(out, "%s: %6.2f%% [%s]\n", label, state.CalculateAverage()*100,
					progressBar(state.CalculateAverage(), ProgressBarWidth))
				return
			}
			if update.Message != "" {
				s.Stop()
				fmt.Fprintln(out, update.Message)
				s.Start()
				continue
			}
			state.UpdateWithETA(update.Index, update.Value)
		case <-ticker.C:
			avg := state.CalculateAverage()
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label,
				FormatProgressBarWithETA(avg, state.GetETA(), ProgressBarWidth)))
		}
	}
}
