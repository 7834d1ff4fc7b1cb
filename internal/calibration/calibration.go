package calibration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/mfmprime/internal/cli"
	"github.com/agbru/mfmprime/internal/config"
	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/progress"
	"github.com/agbru/mfmprime/internal/ui"
)

// CalibrationOptions configures the calibration process.
type CalibrationOptions struct {
	// ProfilePath is the path to save/load the calibration profile.
	// If empty, uses the default path.
	ProfilePath string
	// SaveProfile indicates whether to save the calibration results.
	SaveProfile bool
	// LoadProfile indicates whether to try loading an existing profile.
	LoadProfile bool
	// Quick times half of the candidate K values.
	Quick bool
}

// RunCalibration times the direct and transform correction engines for a
// range of K values at cfg.NMax, prints the timings and saves the crossover
// as the DCT threshold of the calibration profile.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - cfg: The configuration (sequence length, timeout, profile path, sweep Ks).
//   - out: The io.Writer to which progress and results will be written.
//
// Returns:
//   - int: The exit code (0 for success, non-zero for errors).
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer) int {
	return RunCalibrationWithOptions(ctx, cfg, out, CalibrationOptions{
		ProfilePath: cfg.CalibrationProfile,
		SaveProfile: true,
	})
}

// RunCalibrationWithOptions executes calibration with the specified options.
func RunCalibrationWithOptions(ctx context.Context, cfg config.AppConfig, out io.Writer, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the DCT Engine Crossover (N=%d) ---\n", cfg.NMax)

	if opts.LoadProfile {
		if profile, loaded := LoadOrCreateProfile(opts.ProfilePath); loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile from %s%s\n",
				ui.ColorGreen(), resolvePath(opts.ProfilePath), ui.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile.String())
			fmt.Fprintf(out, "\n%s✅ Using cached calibration: %s-dct-threshold %d%s\n",
				ui.ColorGreen(), ui.ColorYellow(), profile.DCTThreshold, ui.ColorReset())
			return apperrors.ExitSuccess
		}
	}

	runner, err := newCalibrationRunner(ctx, cfg.Timeout, cfg.NMax)
	if err != nil {
		fmt.Fprintf(out, "%sCritical error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	candidates := GenerateKCandidates(cfg.NMax)
	if opts.Quick {
		candidates = GenerateQuickKCandidates(cfg.NMax)
	}
	for _, k := range cfg.KValues {
		if k >= 1 && k <= cfg.NMax {
			candidates = append(candidates, k)
		}
	}
	candidates = sortedUnique(candidates)
	fmt.Fprintf(out, "%sTiming %d K values on the dct basis%s\n", ui.ColorCyan(), len(candidates), ui.ColorReset())

	results := make([]calibrationResult, 0, len(candidates))
	calibrationStart := time.Now()

	var wg sync.WaitGroup
	progressChan := make(chan progress.Update, len(candidates)+1)
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)
	stopDisplay := func() {
		close(progressChan)
		wg.Wait()
	}

	for i, k := range candidates {
		if ctx.Err() != nil {
			stopDisplay()
			fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", ui.ColorYellow(), ui.ColorReset())
			return apperrors.HandleSweepError(ctx.Err(), time.Since(calibrationStart), out, cli.CLIColorProvider{})
		}
		res := runner.measure(k)
		if res.Err != nil && apperrors.IsContextError(res.Err) && ctx.Err() != nil {
			stopDisplay()
			return apperrors.HandleSweepError(res.Err, time.Since(calibrationStart), out, cli.CLIColorProvider{})
		}
		results = append(results, res)
		progressChan <- progress.Update{Index: 0, Value: float64(i+1) / float64(len(candidates))}
	}
	stopDisplay()

	threshold, confidence, ok := findCrossover(results, cfg.NMax)
	if !ok {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", ui.ColorRed(), ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, results, threshold)
	printRecommendation(out, threshold, cfg.NMax, confidence)

	if opts.SaveProfile {
		profile := NewProfile()
		profile.DCTThreshold = threshold
		profile.Confidence = confidence
		profile.CalibrationN = cfg.NMax
		profile.CalibrationTime = time.Since(calibrationStart).String()

		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n",
				ui.ColorYellow(), err, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n",
				ui.ColorGreen(), resolvePath(opts.ProfilePath), ui.ColorReset())
		}
	}

	return apperrors.ExitSuccess
}

// MaxProfileAge is the age after which a cached profile is ignored.
const MaxProfileAge = 180 * 24 * time.Hour

// LoadCachedCalibration applies the DCT threshold of a valid cached profile.
// An explicitly configured threshold (anything but the default) wins over
// the profile. Profiles older than MaxProfileAge, or measured at a sequence
// length too far from cfg.NMax, are ignored. Returns the updated config and
// true if the profile was used.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (updated config.AppConfig, ok bool) {
	if cfg.DCTThreshold != correction.DefaultDCTThreshold || !ProfileExists(profilePath) {
		return cfg, false
	}
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded || profile.IsStale(MaxProfileAge) || !profile.Covers(cfg.NMax) {
		return cfg, false
	}

	updated = cfg
	updated.DCTThreshold = profile.DCTThreshold
	return updated, true
}
