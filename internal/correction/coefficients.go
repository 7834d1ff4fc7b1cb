// Package correction implements the frequency-domain perturbation of the
// base sequence: a policy draws K coefficients, a cosine basis turns them
// into one real correction per index, and the rounded corrections are added
// to the base terms.
package correction

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	apperrors "github.com/agbru/mfmprime/internal/errors"
)

// DefaultAmplitude bounds the coefficients: random and seeded policies draw
// from [-DefaultAmplitude, DefaultAmplitude).
const DefaultAmplitude = 2.0

// Coefficient policy names.
const (
	PolicyRandom = "random"
	PolicySeeded = "seeded"
	PolicyFixed  = "fixed"
)

// goldenRatio drives the fixed policy; its multiples modulo 2π are
// equidistributed, which spreads the coefficients over [-A, A].
var goldenRatio = (1 + math.Sqrt(5)) / 2

// CoefficientSource produces the K correction coefficients of one sweep
// iteration.
type CoefficientSource interface {
	// Name returns the policy name.
	Name() string
	// Coefficients returns k coefficients.
	Coefficients(k int) []float64
	// Reproducible reports whether two calls with the same k return the
	// same coefficients.
	Reproducible() bool
}

// RandomSource draws fresh uniform coefficients on every call from the
// automatically seeded global generator. Runs are not reproducible.
type RandomSource struct {
	Amplitude float64
}

func (s RandomSource) Name() string       { return PolicyRandom }
func (s RandomSource) Reproducible() bool { return false }

func (s RandomSource) Coefficients(k int) []float64 {
	coeffs := make([]float64, k)
	for i := range coeffs {
		coeffs[i] = uniform(rand.Float64(), s.Amplitude)
	}
	return coeffs
}

// SeededSource draws uniform coefficients from a PCG stream keyed by
// (Seed, k), so a given K always yields the same coefficients.
type SeededSource struct {
	Amplitude float64
	Seed      uint64
}

func (s SeededSource) Name() string       { return PolicySeeded }
func (s SeededSource) Reproducible() bool { return true }

func (s SeededSource) Coefficients(k int) []float64 {
	rng := rand.New(rand.NewPCG(s.Seed, uint64(k)))
	coeffs := make([]float64, k)
	for i := range coeffs {
		coeffs[i] = uniform(rng.Float64(), s.Amplitude)
	}
	return coeffs
}

// FixedSource uses the closed form c_i = A·cos(i·φ), φ the golden ratio.
// It needs no seed and the first coefficients are shared between K values.
type FixedSource struct {
	Amplitude float64
}

func (s FixedSource) Name() string       { return PolicyFixed }
func (s FixedSource) Reproducible() bool { return true }

func (s FixedSource) Coefficients(k int) []float64 {
	coeffs := make([]float64, k)
	for i := range coeffs {
		coeffs[i] = s.Amplitude * math.Cos(float64(i)*goldenRatio)
	}
	return coeffs
}

// uniform maps r in [0, 1) onto [-a, a).
func uniform(r, a float64) float64 {
	return -a + 2*a*r
}

var policies = map[string]func(amplitude float64, seed uint64) CoefficientSource{
	PolicyRandom: func(a float64, _ uint64) CoefficientSource { return RandomSource{Amplitude: a} },
	PolicySeeded: func(a float64, seed uint64) CoefficientSource { return SeededSource{Amplitude: a, Seed: seed} },
	PolicyFixed:  func(a float64, _ uint64) CoefficientSource { return FixedSource{Amplitude: a} },
}

// Policies returns the sorted names of the available coefficient policies.
func Policies() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSource returns the CoefficientSource registered under policy.
//
// Parameters:
//   - policy: One of Policies().
//   - amplitude: Coefficient bound; must be finite and non-negative.
//   - seed: Used by the seeded policy only.
//
// Returns:
//   - CoefficientSource: The source.
//   - error: A ValidationError for an unknown policy or bad amplitude.
func NewSource(policy string, amplitude float64, seed uint64) (CoefficientSource, error) {
	ctor, ok := policies[strings.ToLower(policy)]
	if !ok {
		return nil, apperrors.NewValidationError("policy",
			fmt.Sprintf("unknown policy %q, valid policies are [%s]", policy, strings.Join(Policies(), ", ")), policy)
	}
	if amplitude < 0 || math.IsNaN(amplitude) || math.IsInf(amplitude, 0) {
		return nil, apperrors.NewValidationError("amplitude", "must be a finite non-negative number", amplitude)
	}
	return ctor(amplitude, seed), nil
}
