// Package orchestration drives a sweep: one pass of base sequence,
// correction and primality counting per K value, with progress fanned out
// to the terminal, the structured log and the metrics.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/mfmprime/internal/cli"
	"github.com/agbru/mfmprime/internal/config"
	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/primality"
	"github.com/agbru/mfmprime/internal/progress"
	"github.com/agbru/mfmprime/internal/sequence"
	"github.com/agbru/mfmprime/pkg/models"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of dropping updates when
// the UI is slow to consume them.
const ProgressBufferMultiplier = 5

// Share of a pass spent in each phase, for progress reporting.
const (
	basePhaseEnd       = 0.3
	correctionPhaseEnd = 0.4
)

// primeProgressInterval is how many terms are tested between two progress
// reports.
const primeProgressInterval = 128

// Dependencies are the collaborators of a sweep.
type Dependencies struct {
	// Source draws the correction coefficients of each pass.
	Source correction.CoefficientSource
	// Corrector turns coefficients into an integer correction vector.
	Corrector *correction.Corrector
	// Tester decides primality of the corrected terms.
	Tester primality.Tester
	// Logger receives one Info event per completed K.
	Logger zerolog.Logger
	// Observers receive per-K progress in addition to the terminal display.
	Observers []progress.Observer
	// Bases builds the base sequence of a pass. Nil means
	// sequence.BaseSequence, rebuilt on every pass.
	Bases func(ctx context.Context, nMax uint64, reporter sequence.ProgressReporter) ([]*big.Int, error)
}

// tracer emits one span per pass. Without an installed SDK it is a no-op.
var tracer = otel.Tracer("github.com/agbru/mfmprime/internal/orchestration")

// NewDependencies builds the sweep collaborators named by the configuration.
func NewDependencies(cfg config.AppConfig, logger zerolog.Logger) (Dependencies, error) {
	source, err := correction.NewSource(cfg.Policy, cfg.Amplitude, cfg.Seed)
	if err != nil {
		return Dependencies{}, apperrors.WrapError(err, "coefficient source")
	}
	corrector, err := correction.New(cfg.CorrectionOptions())
	if err != nil {
		return Dependencies{}, apperrors.WrapError(err, "corrector")
	}
	tester, err := primality.New(cfg.PrimeTest, cfg.PrimeRounds)
	if err != nil {
		return Dependencies{}, apperrors.WrapError(err, "primality tester %q", cfg.PrimeTest)
	}
	return Dependencies{Source: source, Corrector: corrector, Tester: tester, Logger: logger}, nil
}

// ExecuteSweep runs one pass per K of cfg.KValues and returns the records in
// K-ascending order.
//
// Passes run one after another unless cfg.Parallel is set, in which case they
// run concurrently under an errgroup; the records and the summary lines keep
// the K order either way. The first error aborts the whole sweep and is
// returned as an apperrors.SweepError naming the failing K.
//
// Unless cfg.JSONOutput is set, one summary line per K is written to out.
// Unless cfg.Quiet or cfg.JSONOutput is set, a spinner and progress bar are
// rendered to out while the sweep runs.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - cfg: The application configuration (N, K values, mode flags).
//   - deps: The sweep collaborators.
//   - out: The io.Writer for summary lines and progress display.
//
// Returns:
//   - []models.SweepRecord: One record per K value, ascending.
//   - error: The first failure, or nil.
func ExecuteSweep(ctx context.Context, cfg config.AppConfig, deps Dependencies, out io.Writer) ([]models.SweepRecord, error) {
	subject := progress.NewSubject()
	for _, o := range deps.Observers {
		subject.Register(o)
	}

	showProgress := !cfg.Quiet && !cfg.JSONOutput
	var progressChan chan progress.Update
	var displayWg sync.WaitGroup
	if showProgress {
		progressChan = make(chan progress.Update, len(cfg.KValues)*ProgressBufferMultiplier)
		subject.Register(progress.NewChannelObserver(progressChan))
		displayWg.Add(1)
		go cli.DisplayProgress(&displayWg, progressChan, len(cfg.KValues), out)
	}

	emit := func(r models.SweepRecord) {
		if cfg.JSONOutput {
			return
		}
		if progressChan != nil {
			progressChan <- progress.Update{Message: r.SummaryLine()}
			return
		}
		fmt.Fprintln(out, r.SummaryLine())
	}

	var records []models.SweepRecord
	var err error
	if cfg.Parallel {
		records, err = sweepConcurrent(ctx, cfg, deps, subject)
		if err == nil {
			for _, r := range records {
				emit(r)
			}
		}
	} else {
		records, err = sweepSequential(ctx, cfg, deps, subject, emit)
	}

	if progressChan != nil {
		// The observer drops updates on a full buffer; settle every slot
		// so the final bar reflects a completed sweep.
		if err == nil {
			for i := range cfg.KValues {
				progressChan <- progress.Update{Index: i, Value: 1.0}
			}
		}
		close(progressChan)
		displayWg.Wait()
	}
	return records, err
}

func sweepSequential(ctx context.Context, cfg config.AppConfig, deps Dependencies, subject *progress.Subject, emit func(models.SweepRecord)) ([]models.SweepRecord, error) {
	records := make([]models.SweepRecord, 0, len(cfg.KValues))
	for i, k := range cfg.KValues {
		rec, err := RunPass(ctx, cfg.NMax, k, deps, subject.AsReporter(i))
		if err != nil {
			return records, apperrors.NewSweepError(k, err)
		}
		logRecord(deps.Logger, rec)
		records = append(records, rec)
		emit(rec)
	}
	return records, nil
}

func sweepConcurrent(ctx context.Context, cfg config.AppConfig, deps Dependencies, subject *progress.Subject) ([]models.SweepRecord, error) {
	g, ctx := errgroup.WithContext(ctx)
	records := make([]models.SweepRecord, len(cfg.KValues))

	for i, k := range cfg.KValues {
		g.Go(func() error {
			rec, err := RunPass(ctx, cfg.NMax, k, deps, subject.AsReporter(i))
			if err != nil {
				return apperrors.NewSweepError(k, err)
			}
			logRecord(deps.Logger, rec)
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// RunPass performs the sweep pass of a single K value: base sequence,
// coefficient draw, correction, primality count. TimeSec covers the whole
// pass.
//
// Parameters:
//   - ctx: Checked between and within phases.
//   - nMax: The sequence length.
//   - k: The number of correction coefficients.
//   - deps: The sweep collaborators.
//   - report: Optional progress callback (may be nil).
func RunPass(ctx context.Context, nMax, k int, deps Dependencies, report func(float64)) (rec models.SweepRecord, err error) {
	if report == nil {
		report = func(float64) {}
	}
	if nMax < 1 {
		return models.SweepRecord{}, apperrors.NewValidationError("n_max", "must be at least 1", nMax)
	}
	bases := deps.Bases
	if bases == nil {
		bases = sequence.BaseSequence
	}

	ctx, span := tracer.Start(ctx, "RunPass", trace.WithAttributes(
		attribute.Int("mfm.k", k),
		attribute.Int("mfm.n_max", nMax),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("mfm.prime_count", rec.PrimeCount))
		}
		span.End()
	}()

	start := time.Now()

	base, err := bases(ctx, uint64(nMax), progress.Scaled(report, 0, basePhaseEnd))
	if err != nil {
		return models.SweepRecord{}, err
	}

	coeffs := deps.Source.Coefficients(k)
	corr, err := deps.Corrector.Corrections(ctx, coeffs, nMax)
	if err != nil {
		return models.SweepRecord{}, err
	}
	corrected, err := correction.Apply(base, corr)
	if err != nil {
		return models.SweepRecord{}, err
	}
	report(correctionPhaseEnd)

	count, err := countPrimes(ctx, deps.Tester, corrected, progress.Scaled(report, correctionPhaseEnd, 1))
	if err != nil {
		return models.SweepRecord{}, err
	}

	return models.NewSweepRecord(k, count, nMax, time.Since(start).Seconds()), nil
}

// countPrimes is primality.CountPrimes with cancellation and progress.
func countPrimes(ctx context.Context, t primality.Tester, values []*big.Int, report func(float64)) (int, error) {
	count := 0
	for i, v := range values {
		if i%primeProgressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			report(float64(i) / float64(len(values)))
		}
		if t.IsPrime(v) {
			count++
		}
	}
	report(1.0)
	return count, nil
}

func logRecord(logger zerolog.Logger, r models.SweepRecord) {
	logger.Info().
		Int("k", r.K).
		Int("prime_count", r.PrimeCount).
		Float64("prime_fraction", r.PrimeFraction).
		Float64("time_sec", r.TimeSec).
		Msg("sweep pass complete")
}
