// Package algebra implements arithmetic over a prime field F_p, its quadratic
// extension F_p^2, and the two cyclic groups the engine walks: the unit group
// of order p-1 and the norm-one subgroup of order p+1. The modulus is chosen
// at runtime and must be below 2^63 so that sums of two residues never wrap.
package algebra

import "math/bits"

// MulMod returns a*b mod m using a full 128-bit intermediate product.
func MulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

// PowMod returns x^n mod m.
func PowMod(x, n, m uint64) uint64 {
	r := uint64(1) % m
	x %= m
	for n > 0 {
		if n&1 == 1 {
			r = MulMod(r, x, m)
		}
		x = MulMod(x, x, m)
		n >>= 1
	}
	return r
}

// IntPow returns x^n without reduction. The caller guarantees no overflow.
func IntPow(x, n uint64) uint64 {
	r := uint64(1)
	for ; n > 0; n-- {
		r *= x
	}
	return r
}

// AffineShift returns a pseudo-random residue modulo q, distinct for every i
// in [0, q). It serves as a deterministic sampler for residue searches, so
// repeated runs visit candidates in the same order.
func AffineShift(q, i uint64) uint64 {
	// 4q/5 and 2q/3, split so 4q cannot wrap for q near 2^63.
	m := 4*(q/5) + 4*(q%5)/5
	for gcd(m, q) != 1 {
		m--
	}
	a := 2*(q/3) + 2*(q%3)/3
	return (MulMod(m, i, q) + a) % q
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
