package sequence

import "math/big"

// Fibonacci returns F(n) with F(0)=0, F(1)=F(2)=1.
func Fibonacci(n uint64) *big.Int {
	fn, _ := fibPair(n)
	return fn
}

// fibPair returns (F(n), F(n+1)) using the fast doubling identities:
//   - F(2k) = F(k) * (2*F(k+1) - F(k))
//   - F(2k+1) = F(k+1)² + F(k)²
func fibPair(n uint64) (*big.Int, *big.Int) {
	a := big.NewInt(0) // F(k)
	b := big.NewInt(1) // F(k+1)
	t1 := new(big.Int)
	t2 := new(big.Int)

	for i := bitLen(n) - 1; i >= 0; i-- {
		// t1 = F(2k)
		t1.Lsh(b, 1)
		t1.Sub(t1, a)
		t1.Mul(t1, a)
		// t2 = F(2k+1)
		t2.Mul(a, a)
		a.Mul(b, b)
		t2.Add(t2, a)

		a.Set(t1)
		b.Set(t2)

		if (n>>uint(i))&1 == 1 {
			t1.Add(a, b)
			a.Set(b)
			b.Set(t1)
		}
	}
	return a, b
}

// bitLen returns the number of bits needed to represent n.
func bitLen(n uint64) int {
	l := 0
	for n > 0 {
		l++
		n >>= 1
	}
	return l
}
