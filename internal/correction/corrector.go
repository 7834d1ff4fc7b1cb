package correction

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/dsp/fourier"

	apperrors "github.com/agbru/mfmprime/internal/errors"
)

// Basis selects the cosine family the coefficients multiply.
type Basis string

const (
	// BasisFourier evaluates Σ c_k·cos(2πkn/N) for n = 1..N.
	BasisFourier Basis = "fourier"
	// BasisDCT evaluates Σ c_k·cos(πk(n-1)/(N-1)) for n = 1..N, the DCT-I basis.
	BasisDCT Basis = "dct"
)

// Engine selects how the correction vector is evaluated.
type Engine string

const (
	// EngineDirect sums the K cosines at every index: O(N·K).
	EngineDirect Engine = "direct"
	// EngineTransform evaluates the DCT-I basis with one inverse transform:
	// O(N log N), independent of K. Only valid with BasisDCT.
	EngineTransform Engine = "transform"
	// EngineAuto picks EngineTransform for BasisDCT once K reaches the DCT
	// threshold and EngineDirect otherwise.
	EngineAuto Engine = "auto"
)

// DefaultDCTThreshold is the K from which EngineAuto switches to the
// transform engine when no calibration profile says otherwise.
const DefaultDCTThreshold = 64

// Bases returns the valid basis names.
func Bases() []string { return []string{string(BasisDCT), string(BasisFourier)} }

// Engines returns the valid engine names.
func Engines() []string {
	return []string{string(EngineAuto), string(EngineDirect), string(EngineTransform)}
}

// Options configures a Corrector.
type Options struct {
	Basis        Basis
	Engine       Engine
	DCTThreshold int
}

// Corrector turns coefficients into rounded integer corrections.
// A Corrector is immutable and safe for concurrent use.
type Corrector struct {
	opts Options
}

// New validates opts and returns a Corrector.
func New(opts Options) (*Corrector, error) {
	if opts.Basis == "" {
		opts.Basis = BasisFourier
	}
	if opts.Engine == "" {
		opts.Engine = EngineAuto
	}
	if opts.DCTThreshold <= 0 {
		opts.DCTThreshold = DefaultDCTThreshold
	}
	switch opts.Basis {
	case BasisFourier, BasisDCT:
	default:
		return nil, apperrors.NewValidationError("basis", fmt.Sprintf("unknown basis %q", opts.Basis), opts.Basis)
	}
	switch opts.Engine {
	case EngineDirect, EngineAuto:
	case EngineTransform:
		if opts.Basis != BasisDCT {
			return nil, apperrors.NewValidationError("engine", "the transform engine requires the dct basis", opts.Engine)
		}
	default:
		return nil, apperrors.NewValidationError("engine", fmt.Sprintf("unknown engine %q", opts.Engine), opts.Engine)
	}
	return &Corrector{opts: opts}, nil
}

// Options returns the effective options, defaults filled in.
func (c *Corrector) Options() Options { return c.opts }

// EngineFor returns the concrete engine used for k coefficients.
func (c *Corrector) EngineFor(k int) Engine {
	if c.opts.Engine != EngineAuto {
		return c.opts.Engine
	}
	if c.opts.Basis == BasisDCT && k >= c.opts.DCTThreshold {
		return EngineTransform
	}
	return EngineDirect
}

// Corrections evaluates the basis with coeffs at n = 1..length and rounds
// each value to the nearest integer, halves to even.
//
// Returns a ValidationError when the number of coefficients is outside
// [1, length] or length < 2, and the context error if ctx is canceled.
func (c *Corrector) Corrections(ctx context.Context, coeffs []float64, length int) ([]int64, error) {
	k := len(coeffs)
	if length < 2 {
		return nil, apperrors.NewValidationError("n_max", "must be at least 2", length)
	}
	if k < 1 || k > length {
		return nil, apperrors.NewValidationError("k", fmt.Sprintf("must be in [1, %d]", length), k)
	}

	var values []float64
	var err error
	switch c.EngineFor(k) {
	case EngineTransform:
		values = dctTransform(coeffs, length)
	default:
		values, err = directSum(ctx, c.opts.Basis, coeffs, length)
		if err != nil {
			return nil, err
		}
	}

	out := make([]int64, length)
	for i, v := range values {
		out[i] = int64(math.RoundToEven(v))
	}
	return out, nil
}

// directSum accumulates one cosine term at a time over the whole vector.
func directSum(ctx context.Context, basis Basis, coeffs []float64, length int) ([]float64, error) {
	values := make([]float64, length)
	for k, ck := range coeffs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ck == 0 {
			continue
		}
		// The dct basis is phased on n-1, the fourier basis on n.
		freq := 2 * math.Pi * float64(k) / float64(length)
		offset := 1
		if basis == BasisDCT {
			freq = math.Pi * float64(k) / float64(length-1)
			offset = 0
		}
		for i := range values {
			values[i] += ck * math.Cos(freq*float64(i+offset))
		}
	}
	return values, nil
}

// dctTransform evaluates the DCT-I basis through gonum's unnormalized DCT:
//
//	y[m] = x[0] + (-1)^m·x[L-1] + 2·Σ_{j=1}^{L-2} x[j]·cos(πjm/(L-1))
//
// Interior coefficients are halved so that y[m] = Σ c_j·cos(πjm/(L-1)).
func dctTransform(coeffs []float64, length int) []float64 {
	src := make([]float64, length)
	for j, cj := range coeffs {
		if j == 0 || j == length-1 {
			src[j] = cj
		} else {
			src[j] = cj / 2
		}
	}
	return fourier.NewDCT(length).Transform(nil, src)
}

// Apply returns base[i] + corr[i] for every i. The base terms are not modified.
func Apply(base []*big.Int, corr []int64) ([]*big.Int, error) {
	if len(base) != len(corr) {
		return nil, apperrors.NewValidationError("corrections",
			fmt.Sprintf("length %d does not match base sequence length %d", len(corr), len(base)), len(corr))
	}
	out := make([]*big.Int, len(base))
	delta := new(big.Int)
	for i, b := range base {
		out[i] = new(big.Int).Add(b, delta.SetInt64(corr[i]))
	}
	return out, nil
}
