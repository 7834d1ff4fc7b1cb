//go:build gmp

// This file provides a GMP-based primality tester, conditionally compiled
// with the "gmp" build tag. Building it requires libgmp:
//   - Linux: sudo apt-get install libgmp-dev (Debian/Ubuntu)
//   - macOS: brew install gmp

package primality

import (
	"math/big"

	"github.com/ncw/gmp"
)

func init() {
	Register("gmp", func(rounds int) Tester { return GMPTester{Rounds: rounds} })
}

// GMPTester runs mpz_probab_prime_p through github.com/ncw/gmp.
type GMPTester struct {
	Rounds int
}

func (GMPTester) Name() string { return "gmp" }

func (t GMPTester) IsPrime(x *big.Int) bool {
	if x.Cmp(two) < 0 {
		return false
	}
	g := new(gmp.Int).SetBytes(x.Bytes())
	return g.ProbablyPrime(t.Rounds)
}
