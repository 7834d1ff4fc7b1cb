// Package primality wraps library primality tests behind a small registry.
// The default tester uses math/big; a GMP-backed tester registers itself
// when built with the "gmp" build tag.
package primality

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/agbru/mfmprime/internal/errors"
)

// DefaultRounds is the number of Miller-Rabin rounds run on top of the
// Baillie-PSW test. math/big's ProbablyPrime is exact below 2^64.
const DefaultRounds = 20

// DefaultTester is the name of the tester used when none is configured.
const DefaultTester = "big"

// Tester decides primality of arbitrary-precision integers.
// Implementations must be safe for concurrent use.
type Tester interface {
	// Name returns the registry name of the tester.
	Name() string
	// IsPrime reports whether x is (probably) prime. Values below 2 are
	// never prime.
	IsPrime(x *big.Int) bool
}

// constructor builds a tester for a given number of rounds.
type constructor func(rounds int) Tester

var (
	registryMu sync.RWMutex
	registry   = map[string]constructor{}
)

// Register adds a tester constructor under name. It is intended to be
// called from init functions; registering a name twice panics.
func Register(name string, ctor func(rounds int) Tester) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("primality: tester %q registered twice", name))
	}
	registry[name] = ctor
}

// List returns the sorted names of the registered testers.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the tester registered under name.
// rounds <= 0 selects DefaultRounds.
func New(name string, rounds int) (Tester, error) {
	registryMu.RLock()
	ctor, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, apperrors.NewValidationError("prime_test",
			fmt.Sprintf("unknown tester %q, valid testers are [%s]", name, strings.Join(List(), ", ")), name)
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	return ctor(rounds), nil
}

func init() {
	Register(DefaultTester, func(rounds int) Tester { return BigTester{Rounds: rounds} })
}

var two = big.NewInt(2)

// BigTester uses (*big.Int).ProbablyPrime.
type BigTester struct {
	Rounds int
}

func (BigTester) Name() string { return DefaultTester }

func (t BigTester) IsPrime(x *big.Int) bool {
	if x.Cmp(two) < 0 {
		return false
	}
	return x.ProbablyPrime(t.Rounds)
}

// CountPrimes returns how many of values are prime according to t.
func CountPrimes(t Tester, values []*big.Int) int {
	count := 0
	for _, v := range values {
		if t.IsPrime(v) {
			count++
		}
	}
	return count
}
