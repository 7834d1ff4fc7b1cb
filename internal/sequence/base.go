package sequence

import (
	"context"
	"math/big"

	apperrors "github.com/agbru/mfmprime/internal/errors"
)

// BaseOffset is the constant added to floor(F(n)/n^1.5).
const BaseOffset = 2

// progressInterval is how many terms are produced between two progress
// reports in BaseSequence.
const progressInterval = 256

// ProgressReporter receives the normalized progress (0.0 to 1.0) of a
// long-running sequence operation.
type ProgressReporter func(progress float64)

// BaseTerm returns floor(F(n) / n^1.5) + 2 for n >= 1.
//
// The division by the irrational n^1.5 is carried out exactly in integer
// arithmetic: for x >= 0, floor(sqrt(x)) == isqrt(floor(x)), and
// F/n^1.5 = sqrt(F²/n³), hence floor(F/n^1.5) = isqrt(floor(F²/n³)).
//
// Returns a ValidationError for n == 0.
func BaseTerm(n uint64) (*big.Int, error) {
	if n == 0 {
		return nil, apperrors.NewValidationError("n", "base sequence starts at n=1", n)
	}
	return baseFromFib(Fibonacci(n), n, new(big.Int)), nil
}

// baseFromFib computes the base term from an already known F(n).
// scratch is reused for the n³ denominator.
func baseFromFib(fn *big.Int, n uint64, scratch *big.Int) *big.Int {
	nb := new(big.Int).SetUint64(n)
	scratch.Mul(nb, nb)
	scratch.Mul(scratch, nb)

	q := new(big.Int).Mul(fn, fn)
	q.Quo(q, scratch)
	q.Sqrt(q)
	return q.Add(q, big.NewInt(BaseOffset))
}

// BaseSequence returns the terms base(1)..base(nMax), streaming F(n)
// through a FibonacciGenerator.
//
// Parameters:
//   - ctx: Checked periodically for cancellation.
//   - nMax: The sequence length; must be at least 1.
//   - reporter: Optional progress callback (may be nil).
//
// Returns:
//   - []*big.Int: The terms, index i holding base(i+1).
//   - error: A ValidationError for nMax == 0, or the context error.
func BaseSequence(ctx context.Context, nMax uint64, reporter ProgressReporter) ([]*big.Int, error) {
	if nMax == 0 {
		return nil, apperrors.NewValidationError("n_max", "must be at least 1", nMax)
	}
	if reporter == nil {
		reporter = func(float64) {}
	}

	gen := NewFibonacciGenerator()
	// Position on F(0) so the loop's first Next yields F(1).
	if _, err := gen.Next(ctx); err != nil {
		return nil, err
	}

	terms := make([]*big.Int, nMax)
	scratch := new(big.Int)
	for n := uint64(1); n <= nMax; n++ {
		if n%progressInterval == 0 {
			reporter(float64(n) / float64(nMax))
		}
		fn, err := gen.Next(ctx)
		if err != nil {
			return nil, err
		}
		terms[n-1] = baseFromFib(fn, n, scratch)
	}
	reporter(1.0)
	return terms, nil
}
