package correction

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"

	apperrors "github.com/agbru/mfmprime/internal/errors"
)

func mustCorrector(t testing.TB, opts Options) *Corrector {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New(%+v): %v", opts, err)
	}
	return c
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"dct transform", Options{Basis: BasisDCT, Engine: EngineTransform}, false},
		{"fourier transform", Options{Basis: BasisFourier, Engine: EngineTransform}, true},
		{"unknown basis", Options{Basis: "wavelet"}, true},
		{"unknown engine", Options{Engine: "gpu"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineFor(t *testing.T) {
	t.Parallel()
	auto := mustCorrector(t, Options{Basis: BasisDCT, Engine: EngineAuto, DCTThreshold: 10})
	if got := auto.EngineFor(9); got != EngineDirect {
		t.Errorf("EngineFor(9) = %v, want direct", got)
	}
	if got := auto.EngineFor(10); got != EngineTransform {
		t.Errorf("EngineFor(10) = %v, want transform", got)
	}
	fourierAuto := mustCorrector(t, Options{Basis: BasisFourier})
	if got := fourierAuto.EngineFor(1000); got != EngineDirect {
		t.Errorf("fourier basis must always use direct, got %v", got)
	}
	if got := fourierAuto.Options().DCTThreshold; got != DefaultDCTThreshold {
		t.Errorf("default threshold = %d, want %d", got, DefaultDCTThreshold)
	}
}

func TestCorrectionsConstantTerm(t *testing.T) {
	t.Parallel()
	// With K=1 only the k=0 cosine (identically 1) contributes.
	for _, basis := range []Basis{BasisFourier, BasisDCT} {
		c := mustCorrector(t, Options{Basis: basis, Engine: EngineDirect})
		got, err := c.Corrections(context.Background(), []float64{1.6}, 50)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range got {
			if v != 2 {
				t.Fatalf("%s: corr[%d] = %d, want 2", basis, i, v)
			}
		}
	}
}

func TestCorrectionsFourierBasis(t *testing.T) {
	t.Parallel()
	// c = (0, 2): corr(n) = 2·cos(2πn/N). With N=4: n=1..4 -> 0, -2, 0, 2.
	c := mustCorrector(t, Options{Basis: BasisFourier, Engine: EngineDirect})
	got, err := c.Corrections(context.Background(), []float64{0, 2}, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{0, -2, 0, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("corr[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCorrectionsRoundHalfToEven(t *testing.T) {
	t.Parallel()
	c := mustCorrector(t, Options{Engine: EngineDirect})
	for coeff, want := range map[float64]int64{0.5: 0, 1.5: 2, -0.5: 0, -1.5: -2, 1.49: 1} {
		got, err := c.Corrections(context.Background(), []float64{coeff}, 2)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != want {
			t.Errorf("round(%v) = %d, want %d", coeff, got[0], want)
		}
	}
}

func TestCorrectionsValidation(t *testing.T) {
	t.Parallel()
	c := mustCorrector(t, Options{})
	cases := []struct {
		coeffs []float64
		length int
	}{
		{nil, 10},
		{make([]float64, 11), 10},
		{[]float64{1}, 1},
	}
	for _, tc := range cases {
		_, err := c.Corrections(context.Background(), tc.coeffs, tc.length)
		var vErr apperrors.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("K=%d N=%d: expected ValidationError, got %v", len(tc.coeffs), tc.length, err)
		}
	}
}

func TestCorrectionsCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := mustCorrector(t, Options{Engine: EngineDirect})
	if _, err := c.Corrections(ctx, []float64{1, 2, 3}, 100); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestTransformMatchesDirect checks the gonum DCT path against the plain
// summation of the same DCT-I basis, before rounding.
func TestTransformMatchesDirect(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ k, n int }{{1, 2}, {5, 64}, {63, 64}, {64, 64}, {100, 5000}} {
		coeffs := SeededSource{Amplitude: 2, Seed: uint64(tc.k)}.Coefficients(tc.k)
		direct, err := directSum(context.Background(), BasisDCT, coeffs, tc.n)
		if err != nil {
			t.Fatal(err)
		}
		transformed := dctTransform(coeffs, tc.n)
		for i := range direct {
			if math.Abs(direct[i]-transformed[i]) > 1e-8*float64(tc.k) {
				t.Fatalf("K=%d N=%d index %d: direct %v, transform %v", tc.k, tc.n, i, direct[i], transformed[i])
			}
		}
	}
}

func FuzzTransformConsistency(f *testing.F) {
	f.Add(uint64(1), 5, 100)
	f.Add(uint64(2), 64, 64)
	f.Add(uint64(3), 20, 5000)

	f.Fuzz(func(t *testing.T, seed uint64, k, n int) {
		if n < 2 || n > 4096 || k < 1 || k > n {
			return
		}
		coeffs := SeededSource{Amplitude: 2, Seed: seed}.Coefficients(k)
		direct, err := directSum(context.Background(), BasisDCT, coeffs, n)
		if err != nil {
			t.Fatal(err)
		}
		transformed := dctTransform(coeffs, n)
		for i := range direct {
			if math.Abs(direct[i]-transformed[i]) > 1e-7*float64(k) {
				t.Fatalf("index %d: direct %v, transform %v", i, direct[i], transformed[i])
			}
		}
	})
}

func TestApply(t *testing.T) {
	t.Parallel()
	base := []*big.Int{big.NewInt(3), big.NewInt(2), big.NewInt(17)}
	out, err := Apply(base, []int64{-1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{2, 2, 19}
	for i := range want {
		if out[i].Int64() != want[i] {
			t.Errorf("out[%d] = %v, want %d", i, out[i], want[i])
		}
	}
	if base[0].Int64() != 3 {
		t.Error("Apply must not modify the base terms")
	}
	if _, err := Apply(base, []int64{1}); err == nil {
		t.Error("expected a length mismatch error")
	}
}
