package sylow

import (
	"github.com/pkg/errors"

	"github.com/colbyaustinbrown/libbgs/algebra"
	"github.com/colbyaustinbrown/libbgs/factor"
)

var (
	// ErrOrderMismatch reports a factorization whose value is not the order
	// of the group being decomposed.
	ErrOrderMismatch = errors.New("sylow: factorization does not match group order")
	// ErrNotInSubgroup reports an element with no discrete log over the
	// decomposition's generators.
	ErrNotInSubgroup = errors.New("sylow: element outside the decomposed subgroup")
)

// Decomp is the decomposition of a cyclic group into its Sylow subgroups,
// holding one generator per prime power of the group order. It is immutable
// after construction and safe for concurrent use.
type Decomp[E comparable] struct {
	group algebra.Group[E]
	fact  *factor.Factorization
	gens  []E
}

// NewDecomp finds a generator for each Sylow subgroup. The search is
// deterministic, so decomposing the same group twice yields the same
// generators.
func NewDecomp[E comparable](g algebra.Group[E], fact *factor.Factorization) (*Decomp[E], error) {
	if fact.Value() != g.Size() {
		return nil, errors.Wrapf(ErrOrderMismatch, "%v != %d", fact, g.Size())
	}
	d := &Decomp[E]{group: g, fact: fact, gens: make([]E, fact.Len())}
	hinter, _ := any(g).(algebra.GeneratorHinter[E])
	for i := 0; i < fact.Len(); i++ {
		if hinter != nil {
			if gen, ok := hinter.GeneratorHint(fact.Prime(i), fact.Exp(i)); ok {
				d.gens[i] = gen
				continue
			}
		}
		d.gens[i] = findGenerator(g, fact.Prime(i), fact.Exp(i))
	}
	return d, nil
}

// findGenerator walks the group's candidate sequence until it hits an
// element whose projection into the Sylow subgroup has full order.
func findGenerator[E comparable](g algebra.Group[E], p uint64, e int) E {
	var zero E
	pe := algebra.IntPow(p, uint64(e))
	proj := g.Size() / pe
	check := algebra.IntPow(p, uint64(e-1))
	for i := uint64(1); ; i++ {
		c := g.Candidate(i)
		if c == zero {
			continue
		}
		res := algebra.Pow(g, c, proj)
		if algebra.Pow(g, res, check) != g.One() {
			return res
		}
	}
}

// Group returns the decomposed group.
func (d *Decomp[E]) Group() algebra.Group[E] { return d.group }

// Fact returns the factorization of the group order.
func (d *Decomp[E]) Fact() *factor.Factorization { return d.fact }

// Generator returns the generator of the i-th Sylow subgroup.
func (d *Decomp[E]) Generator(i int) E { return d.gens[i] }

// Product maps a coordinate vector back to the group element it names.
func (d *Decomp[E]) Product(x Elem) E {
	res := d.group.One()
	for i, c := range x {
		if c == 0 {
			continue
		}
		res = d.group.Mul(res, algebra.Pow(d.group, d.gens[i], c))
	}
	return res
}

// DiscreteLog inverts Product: it recovers the coordinates of x by the
// Pohlig-Hellman reduction, solving each prime-power digit with
// baby-step/giant-step. Returns ErrNotInSubgroup when x does not lie in the
// subgroup generated by the decomposition's generators.
func (d *Decomp[E]) DiscreteLog(x E) (Elem, error) {
	coords := make(Elem, d.fact.Len())
	n := d.fact.Value()
	for i := range coords {
		p := d.fact.Prime(i)
		pe := d.fact.Factor(i)
		y := algebra.Pow(d.group, x, n/pe)
		gen := d.gens[i]
		gamma := algebra.Pow(d.group, gen, pe/p)
		c := uint64(0)
		pk := uint64(1)
		for k := 0; k < d.fact.Exp(i); k++ {
			t := d.group.Mul(y, algebra.Inverse(d.group, algebra.Pow(d.group, gen, c)))
			h := algebra.Pow(d.group, t, pe/(pk*p))
			digit, ok := babyGiant(d.group, gamma, h, p)
			if !ok {
				return nil, errors.Wrapf(ErrNotInSubgroup, "prime %d", p)
			}
			c += digit * pk
			pk *= p
		}
		// The digits recover log(y) = coordinate * (n/pe) mod pe; undo the
		// projection exponent, which is coprime to p.
		coords[i] = algebra.MulMod(c, invModPrimePower((n/pe)%pe, p, pe), pe)
	}
	if d.Product(coords) != x {
		return nil, errors.Wrap(ErrNotInSubgroup, "product mismatch")
	}
	return coords, nil
}

// invModPrimePower returns a^-1 mod p^e for a coprime to p, by Euler's
// theorem.
func invModPrimePower(a, p, pe uint64) uint64 {
	phi := pe - pe/p
	return algebra.PowMod(a, phi-1, pe)
}

// babyGiant solves gamma^r = h for r in [0, p), where gamma has order p.
func babyGiant[E comparable](g algebra.Group[E], gamma, h E, p uint64) (uint64, bool) {
	m := uint64(1)
	for m*m < p {
		m++
	}
	baby := make(map[E]uint64, m)
	e := g.One()
	for j := uint64(0); j < m; j++ {
		if _, ok := baby[e]; !ok {
			baby[e] = j
		}
		e = g.Mul(e, gamma)
	}
	giant := algebra.Inverse(g, algebra.Pow(g, gamma, m))
	cur := h
	for i := uint64(0); i <= m; i++ {
		if j, ok := baby[cur]; ok {
			return (i*m + j) % p, true
		}
		cur = g.Mul(cur, giant)
	}
	return 0, false
}

// ConjChar maps a coordinate vector to the coordinates of its Frobenius
// conjugate, raising each coordinate by the group's conjugation exponent.
func (d *Decomp[E]) ConjChar(x Elem) Elem {
	e := d.group.ConjExp()
	z := make(Elem, len(x))
	for i, c := range x {
		z[i] = algebra.MulMod(c, e%d.fact.Factor(i), d.fact.Factor(i))
	}
	return z
}
