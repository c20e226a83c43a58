// Package sylow decomposes a finite cyclic group into its Sylow subgroups
// and enumerates elements by order as coordinate vectors over the subgroup
// generators.
package sylow

import (
	"fmt"

	"github.com/colbyaustinbrown/libbgs/algebra"
	"github.com/colbyaustinbrown/libbgs/factor"
)

// Elem is an element of a Sylow decomposition, written as one exponent per
// Sylow subgroup: the element is the product of the i-th generator raised to
// coordinate i. Coordinate arithmetic is componentwise modulo the prime
// powers of the decomposition's factorization.
type Elem []uint64

// One returns the identity of a decomposition with n prime factors.
func One(n int) Elem { return make(Elem, n) }

// IsOne reports whether all coordinates are zero.
func (x Elem) IsOne() bool {
	for _, c := range x {
		if c != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (x Elem) Clone() Elem {
	y := make(Elem, len(x))
	copy(y, x)
	return y
}

// Mul returns the componentwise product of x and y.
func (x Elem) Mul(y Elem, fact *factor.Factorization) Elem {
	z := make(Elem, len(x))
	for i := range x {
		z[i] = (x[i] + y[i]) % fact.Factor(i)
	}
	return z
}

// Pow returns x^n. Exponentiation is scalar multiplication on each
// coordinate.
func (x Elem) Pow(n uint64, fact *factor.Factorization) Elem {
	z := make(Elem, len(x))
	for i := range x {
		z[i] = algebra.MulMod(x[i], n%fact.Factor(i), fact.Factor(i))
	}
	return z
}

// Inv returns the inverse of x.
func (x Elem) Inv(fact *factor.Factorization) Elem {
	z := make(Elem, len(x))
	for i := range x {
		if x[i] != 0 {
			z[i] = fact.Factor(i) - x[i]
		}
	}
	return z
}

// Order returns the order of x: the product over coordinates of
// p^e / gcd(coordinate, p^e).
func (x Elem) Order(fact *factor.Factorization) uint64 {
	ord := uint64(1)
	for i, c := range x {
		pe := fact.Factor(i)
		ord *= pe / gcd(c, pe)
	}
	return ord
}

func (x Elem) String() string { return fmt.Sprint([]uint64(x)) }

func gcd(a, b uint64) uint64 {
	for a != 0 {
		a, b = b%a, a
	}
	return b
}
