// Package sequence builds the integer sequences swept by the application:
// the Fibonacci numbers F(n) and the base sequence floor(F(n)/n^1.5) + 2.
// This file defines the SequenceGenerator interface for iterative/streaming
// generation of Fibonacci numbers.
package sequence

import (
	"context"
	"math/big"
)

// SequenceGenerator defines the interface for generating consecutive
// Fibonacci values. Producing F(n+1) from F(n-1) and F(n) costs one big
// addition, which is what makes building a whole base sequence linear.
//
// Example usage:
//
//	gen := sequence.NewFibonacciGenerator()
//	for i := 0; i < 100; i++ {
//	    val, err := gen.Next(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    // Use val
//	}
type SequenceGenerator interface {
	// Next advances the generator and returns the next Fibonacci number.
	// The first call returns F(0), the second F(1), etc.
	// Returns an error if the context is cancelled.
	Next(ctx context.Context) (*big.Int, error)

	// Current returns a copy of the current Fibonacci number without
	// advancing. If Next has never been called, returns nil.
	Current() *big.Int

	// Index returns the index of the current Fibonacci number.
	// If Next has never been called, returns 0.
	Index() uint64

	// Reset resets the generator to start from F(0).
	Reset()

	// Skip positions the generator on F(n) without producing the
	// intermediate values, and returns F(n). The following Next returns F(n+1).
	Skip(ctx context.Context, n uint64) (*big.Int, error)
}

// FibonacciGenerator is the iterative SequenceGenerator implementation.
// It keeps the pair (F(i), F(i+1)) and is not safe for concurrent use.
type FibonacciGenerator struct {
	cur, next *big.Int
	index     uint64
	started   bool
}

// NewFibonacciGenerator returns a generator positioned before F(0).
func NewFibonacciGenerator() *FibonacciGenerator {
	g := &FibonacciGenerator{}
	g.Reset()
	return g
}

// Next implements SequenceGenerator.
func (g *FibonacciGenerator) Next(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !g.started {
		g.started = true
		return new(big.Int).Set(g.cur), nil
	}
	// (cur, next) -> (next, cur+next)
	g.cur.Add(g.cur, g.next)
	g.cur, g.next = g.next, g.cur
	g.index++
	return new(big.Int).Set(g.cur), nil
}

// Current implements SequenceGenerator.
func (g *FibonacciGenerator) Current() *big.Int {
	if !g.started {
		return nil
	}
	return new(big.Int).Set(g.cur)
}

// Index implements SequenceGenerator.
func (g *FibonacciGenerator) Index() uint64 {
	return g.index
}

// Reset implements SequenceGenerator.
func (g *FibonacciGenerator) Reset() {
	g.cur = big.NewInt(0)
	g.next = big.NewInt(1)
	g.index = 0
	g.started = false
}

// Skip implements SequenceGenerator using fast doubling, so the cost is
// logarithmic in n rather than linear.
func (g *FibonacciGenerator) Skip(ctx context.Context, n uint64) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, fn1 := fibPair(n)
	g.cur, g.next = fn, fn1
	g.index = n
	g.started = true
	return new(big.Int).Set(fn), nil
}
