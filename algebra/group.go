package algebra

import "github.com/colbyaustinbrown/libbgs/factor"

// Group is a finite cyclic group with comparable value-type elements.
// Implementations must keep Mul associative and Size equal to the true group
// order; the generic helpers below rely on both.
type Group[E comparable] interface {
	// One returns the identity element.
	One() E
	// Size returns the order of the group.
	Size() uint64
	// Mul returns the product of two elements.
	Mul(a, b E) E
	// Candidate returns the i-th element of a deterministic sequence used to
	// search for subgroup generators. Candidates may repeat or be trivial;
	// callers skip unusable ones.
	Candidate(i uint64) E
	// ConjExp returns e such that the Frobenius conjugate of any element x
	// is x^e. It is 1 when conjugation is trivial and Size()-1 when
	// conjugation inverts.
	ConjExp() uint64
}

// GeneratorHinter is implemented by groups that can name a Sylow generator
// for certain prime powers directly, skipping the candidate search.
type GeneratorHinter[E comparable] interface {
	GeneratorHint(prime uint64, exp int) (E, bool)
}

// Pow returns x^n by repeated squaring.
func Pow[E comparable](g Group[E], x E, n uint64) E {
	y := g.One()
	for n > 0 {
		if n&1 == 1 {
			y = g.Mul(y, x)
		}
		x = g.Mul(x, x)
		n >>= 1
	}
	return y
}

// Inverse returns x^(Size-1).
func Inverse[E comparable](g Group[E], x E) E {
	return Pow(g, x, g.Size()-1)
}

// Order returns the multiplicative order of x, given the factorization of
// the group order. For each prime it strips all other prime-power parts and
// counts how many times the prime divides what remains.
func Order[E comparable](g Group[E], x E, fact *factor.Factorization) uint64 {
	one := g.One()
	res := uint64(1)
	for i := 0; i < fact.Len(); i++ {
		y := x
		for j := 0; j < fact.Len(); j++ {
			if j == i {
				continue
			}
			y = Pow(g, y, fact.Factor(j))
		}
		r := uint64(0)
		for y != one {
			y = Pow(g, y, fact.Prime(i))
			r++
		}
		res *= IntPow(fact.Prime(i), r)
	}
	return res
}

// UnitGroup is the multiplicative group of F_p, of order p-1.
type UnitGroup struct {
	F Fp
}

func (g UnitGroup) One() FpNum               { return 1 }
func (g UnitGroup) Size() uint64             { return g.F.P - 1 }
func (g UnitGroup) Mul(a, b FpNum) FpNum     { return g.F.Mul(a, b) }
func (g UnitGroup) ConjExp() uint64          { return 1 }

func (g UnitGroup) Candidate(i uint64) FpNum {
	return FpNum(AffineShift(g.F.P, i))
}

// GeneratorHint returns p-1, the canonical element of order 2, when the
// Sylow subgroup in question is exactly Z/2.
func (g UnitGroup) GeneratorHint(prime uint64, exp int) (FpNum, bool) {
	if prime == 2 && exp == 1 {
		return FpNum(g.F.P - 1), true
	}
	return 0, false
}

// Norm1Group is the subgroup of norm-one elements of the unit group of
// F_p^2, of order p+1. Its elements are exactly the (p-1)-th powers of
// nonzero extension elements.
type Norm1Group struct {
	E Ext
}

func (g Norm1Group) One() QuadNum             { return g.E.One() }
func (g Norm1Group) Size() uint64             { return g.E.Fp.P + 1 }
func (g Norm1Group) Mul(a, b QuadNum) QuadNum { return g.E.Mul(a, b) }

// ConjExp: the Frobenius map x -> x^p inverts on a subgroup of order p+1.
func (g Norm1Group) ConjExp() uint64 { return g.Size() - 1 }

func (g Norm1Group) Candidate(i uint64) QuadNum {
	p := g.E.Fp.P
	j := AffineShift(2*p, i)
	return g.E.Pow(g.E.Steinitz(j), p-1)
}
