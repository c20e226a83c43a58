// Package factor provides prime-power factorizations of group orders and the
// divisor-lattice machinery built on top of them: lazy divisor enumeration
// and a concurrency-safe classification trie keyed by exponent vectors.
package factor

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// PrimePower is a single (prime, exponent) term of a factorization.
type PrimePower struct {
	Prime uint64
	Exp   int
}

// Factorization is the prime-power decomposition of a group order.
// It is computed once per order and shared read-only by all consumers.
type Factorization struct {
	pps   []PrimePower
	value uint64
}

// New builds a Factorization from known prime powers. The primes must be
// distinct and in increasing order; exponents must be positive.
func New(pps []PrimePower) (*Factorization, error) {
	if len(pps) == 0 {
		return nil, errors.New("factor: empty factorization")
	}
	value := uint64(1)
	for i, pp := range pps {
		if pp.Prime < 2 || pp.Exp < 1 {
			return nil, errors.Errorf("factor: bad prime power %d^%d", pp.Prime, pp.Exp)
		}
		if !isPrime64(pp.Prime) {
			return nil, errors.Errorf("factor: %d is not prime", pp.Prime)
		}
		if i > 0 && pps[i-1].Prime >= pp.Prime {
			return nil, errors.Errorf("factor: primes not strictly increasing at index %d", i)
		}
		value *= intPow(pp.Prime, pp.Exp)
	}
	return &Factorization{pps: pps, value: value}, nil
}

// MustNew is New for statically known inputs; it panics on malformed input.
func MustNew(pps []PrimePower) *Factorization {
	f, err := New(pps)
	if err != nil {
		panic(err)
	}
	return f
}

// Of factors n by trial division and Pollard's rho.
func Of(n uint64) (*Factorization, error) {
	if n < 2 {
		return nil, errors.Errorf("factor: cannot factor %d", n)
	}
	primes := map[uint64]int{}
	splitOff(n, primes)
	pps := make([]PrimePower, 0, len(primes))
	for p, e := range primes {
		pps = append(pps, PrimePower{Prime: p, Exp: e})
	}
	sort.Slice(pps, func(i, j int) bool { return pps[i].Prime < pps[j].Prime })
	return New(pps)
}

// Len returns the number of distinct prime factors.
func (f *Factorization) Len() int { return len(f.pps) }

// Value returns the factored number itself.
func (f *Factorization) Value() uint64 { return f.value }

// Prime returns the i-th prime.
func (f *Factorization) Prime(i int) uint64 { return f.pps[i].Prime }

// Exp returns the exponent of the i-th prime.
func (f *Factorization) Exp(i int) int { return f.pps[i].Exp }

// Factor returns the full i-th prime power p_i^{e_i}.
func (f *Factorization) Factor(i int) uint64 {
	return intPow(f.pps[i].Prime, f.pps[i].Exp)
}

// PrimePowers returns the underlying terms. The slice must not be modified.
func (f *Factorization) PrimePowers() []PrimePower { return f.pps }

// Tau returns the number of divisors of the factored value.
func (f *Factorization) Tau() uint64 {
	t := uint64(1)
	for _, pp := range f.pps {
		t *= uint64(pp.Exp + 1)
	}
	return t
}

// Phi returns Euler's totient of the factored value.
func (f *Factorization) Phi() uint64 {
	phi := uint64(1)
	for _, pp := range f.pps {
		phi *= (pp.Prime - 1) * intPow(pp.Prime, pp.Exp-1)
	}
	return phi
}

// FromPowers converts an exponent vector to the divisor it represents.
func (f *Factorization) FromPowers(ds []int) uint64 {
	d := uint64(1)
	for i, e := range ds {
		d *= intPow(f.pps[i].Prime, e)
	}
	return d
}

// CountOfOrder returns the number of elements of a cyclic group of the
// factored order whose order is exactly the divisor represented by ds.
// This is Euler's totient of the divisor.
func (f *Factorization) CountOfOrder(ds []int) uint64 {
	c := uint64(1)
	for i, e := range ds {
		if e == 0 {
			continue
		}
		c *= (f.pps[i].Prime - 1) * intPow(f.pps[i].Prime, e-1)
	}
	return c
}

// MaximalDivisors collects the exponent vectors of all divisors d <= limit
// such that no multiple of d dividing the value stays within the limit.
func (f *Factorization) MaximalDivisors(limit uint64) [][]int {
	var out [][]int
	s := NewDivisorStream(f, limit, true)
	for {
		ds, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, ds)
	}
}

func (f *Factorization) String() string {
	s := ""
	for i, pp := range f.pps {
		if i > 0 {
			s += " * "
		}
		s += fmt.Sprintf("%d^%d", pp.Prime, pp.Exp)
	}
	return s
}

func intPow(p uint64, e int) uint64 {
	r := uint64(1)
	for ; e > 0; e-- {
		r *= p
	}
	return r
}
