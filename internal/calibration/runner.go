package calibration

import (
	"context"
	"time"

	"github.com/agbru/mfmprime/internal/correction"
)

// DefaultTrialIterations is how many times each (engine, K) pair is timed;
// the fastest run is kept.
const DefaultTrialIterations = 3

// calibrationResult holds the timings of one K value.
type calibrationResult struct {
	K         int
	Direct    time.Duration
	Transform time.Duration
	Err       error
}

// TransformWins reports whether the transform engine was at least as fast.
func (r calibrationResult) TransformWins() bool {
	return r.Err == nil && r.Transform <= r.Direct
}

// calibrationRunner encapsulates the trial run logic for calibration.
type calibrationRunner struct {
	ctx        context.Context
	perTrial   time.Duration
	nMax       int
	iterations int
	direct     *correction.Corrector
	transform  *correction.Corrector
	source     correction.CoefficientSource
}

// newCalibrationRunner creates a runner timing both engines on the DCT basis
// for sequences of length nMax.
func newCalibrationRunner(ctx context.Context, timeout time.Duration, nMax int) (*calibrationRunner, error) {
	perTrial := timeout / 6
	if perTrial < 2*time.Second {
		perTrial = 2 * time.Second
	}
	direct, err := correction.New(correction.Options{Basis: correction.BasisDCT, Engine: correction.EngineDirect})
	if err != nil {
		return nil, err
	}
	transform, err := correction.New(correction.Options{Basis: correction.BasisDCT, Engine: correction.EngineTransform})
	if err != nil {
		return nil, err
	}
	source, err := correction.NewSource(correction.PolicyFixed, correction.DefaultAmplitude, 0)
	if err != nil {
		return nil, err
	}
	return &calibrationRunner{
		ctx:        ctx,
		perTrial:   perTrial,
		nMax:       nMax,
		iterations: DefaultTrialIterations,
		direct:     direct,
		transform:  transform,
		source:     source,
	}, nil
}

// runTrial times one engine for k coefficients and returns the fastest of
// r.iterations runs.
func (r *calibrationRunner) runTrial(c *correction.Corrector, k int) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()

	coeffs := r.source.Coefficients(k)
	best := time.Duration(1<<63 - 1)
	for range max(1, r.iterations) {
		start := time.Now()
		if _, err := c.Corrections(ctx, coeffs, r.nMax); err != nil {
			return 0, err
		}
		best = min(best, time.Since(start))
	}
	return best, nil
}

// measure times both engines at k.
func (r *calibrationRunner) measure(k int) calibrationResult {
	res := calibrationResult{K: k}
	res.Direct, res.Err = r.runTrial(r.direct, k)
	if res.Err != nil {
		return res
	}
	res.Transform, res.Err = r.runTrial(r.transform, k)
	return res
}
