// Package markoff models coordinates of solutions to the Markoff-type
// surface x^2 + y^2 + z^2 - xyz = 0 over F_p, classifying each coordinate by
// the conic its rotation orbit lies on and bounding when orbits are provably
// long.
package markoff

import (
	"math"

	"github.com/pkg/errors"

	"github.com/colbyaustinbrown/libbgs/algebra"
	"github.com/colbyaustinbrown/libbgs/factor"
)

// ErrNoOrbit reports a coordinate pair that admits no third coordinate, so
// there is no orbit to walk.
var ErrNoOrbit = errors.New("markoff: coordinate pair completes no solution")

// Space bundles the arithmetic contexts for one modulus: the field, its
// quadratic extension, the two cyclic groups, and the factorizations of
// their orders.
type Space struct {
	F         algebra.Fp
	E         algebra.Ext
	Unit      algebra.UnitGroup
	Norm1     algebra.Norm1Group
	MinusFact *factor.Factorization
	PlusFact  *factor.Factorization
}

// NewSpace builds the space for the odd prime p, given the factorizations
// of p-1 and p+1.
func NewSpace(p uint64, minus, plus *factor.Factorization) (*Space, error) {
	if minus.Value() != p-1 {
		return nil, errors.Errorf("markoff: %v is not a factorization of %d", minus, p-1)
	}
	if plus.Value() != p+1 {
		return nil, errors.Errorf("markoff: %v is not a factorization of %d", plus, p+1)
	}
	f := algebra.Fp{P: p}
	e := algebra.NewExt(f)
	return &Space{
		F:         f,
		E:         e,
		Unit:      algebra.UnitGroup{F: f},
		Norm1:     algebra.Norm1Group{E: e},
		MinusFact: minus,
		PlusFact:  plus,
	}, nil
}

// Conic names the curve a rotation orbit lies on.
type Conic int

const (
	// Parabola holds the orbits of rotation order one or two.
	Parabola Conic = iota
	// Hyperbola holds orbits whose character lies in F_p, of order
	// dividing p-1.
	Hyperbola
	// Ellipse holds orbits whose character has norm one in the extension,
	// of order dividing p+1.
	Ellipse
)

func (c Conic) String() string {
	switch c {
	case Parabola:
		return "parabola"
	case Hyperbola:
		return "hyperbola"
	default:
		return "ellipse"
	}
}

// Chi is a character chi with a = chi + chi^-1 for some coordinate a. It
// lies either in F_p or in the norm-one subgroup of the extension.
type Chi struct {
	Fp      algebra.FpNum
	Quad    algebra.QuadNum
	InField bool
}

// ToChi solves chi + chi^-1 = a. The discriminant a^2 - 4 decides the home
// of chi: a square root in F_p puts chi in the field, otherwise chi lands in
// the norm-one subgroup.
func (s *Space) ToChi(a algebra.FpNum) Chi {
	disc := s.F.Sub(s.F.Mul(a, a), s.F.FromInt(4))
	twoInv, _ := s.F.Inv(2)
	root := s.E.Sqrt(disc)
	if root.A1 == 0 {
		return Chi{Fp: s.F.Mul(s.F.Add(a, root.A0), twoInv), InField: true}
	}
	half := s.E.FromFp(twoInv)
	return Chi{Quad: s.E.Mul(s.E.Add(s.E.FromFp(a), root), half)}
}

// RotOrder returns the order of the rotation map fixed by the coordinate a,
// and the conic its orbit lies on.
func (s *Space) RotOrder(a algebra.FpNum) (uint64, Conic) {
	chi := s.ToChi(a)
	if chi.InField {
		ord := algebra.Order[algebra.FpNum](s.Unit, chi.Fp, s.MinusFact)
		if ord <= 2 {
			return ord, Parabola
		}
		return ord, Hyperbola
	}
	ord := algebra.Order[algebra.QuadNum](s.Norm1, chi.Quad, s.PlusFact)
	if ord <= 2 {
		return ord, Parabola
	}
	return ord, Ellipse
}

// Endgame returns upper bounds on the endgame breakpoints for the two long
// conic types: every orbit of rotation order above the bound is guaranteed
// to hit any set of the size the driver searches.
func (s *Space) Endgame() (hyper, ellip uint64) {
	tmp := 8.0 * math.Sqrt(float64(s.F.P))
	h := tmp * float64(s.F.P-1) * float64(s.MinusFact.Tau()) / float64(s.MinusFact.Phi())
	e := tmp * float64(s.F.P+1) * float64(s.PlusFact.Tau()) / float64(s.PlusFact.Phi())
	return uint64(math.Ceil(h)), uint64(math.Ceil(e))
}

// Partners returns the third coordinates c completing (a, b) to a solution:
// the roots of z^2 - abz + (a^2 + b^2), of which there are zero, one, or
// two.
func (s *Space) Partners(a, b algebra.FpNum) []algebra.FpNum {
	ab := s.F.Mul(a, b)
	disc := s.F.Sub(s.F.Mul(ab, ab), s.F.Mul(4, s.F.Add(s.F.Mul(a, a), s.F.Mul(b, b))))
	root, ok := s.F.Sqrt(disc)
	if !ok {
		return nil
	}
	twoInv, _ := s.F.Inv(2)
	if root == 0 {
		return []algebra.FpNum{s.F.Mul(ab, twoInv)}
	}
	return []algebra.FpNum{
		s.F.Mul(s.F.Sub(ab, root), twoInv),
		s.F.Mul(s.F.Add(ab, root), twoInv),
	}
}

// Orbit walks the points (y, z) -> (z, az - y) of the rotation fixed by a,
// yielding the successive third coordinates.
type Orbit struct {
	s        *Space
	a        algebra.FpNum
	b0, c0   algebra.FpNum
	y, z     algebra.FpNum
	started  bool
	finished bool
}

// Part begins the orbit of the rotation fixed by a through some pair
// (b, c). It fails with ErrNoOrbit when no third coordinate exists.
func (s *Space) Part(a, b algebra.FpNum) (*Orbit, error) {
	cands := s.Partners(a, b)
	if len(cands) == 0 {
		return nil, errors.Wrapf(ErrNoOrbit, "a=%d b=%d", a, b)
	}
	c := cands[0]
	return &Orbit{s: s, a: a, b0: b, c0: c, y: b, z: c}, nil
}

// Next returns the next coordinate of the walk, or false once the orbit
// closes back on its starting pair.
func (o *Orbit) Next() (algebra.FpNum, bool) {
	if o.finished {
		return 0, false
	}
	if !o.started {
		o.started = true
		return o.z, true
	}
	y, z := o.z, o.s.F.Sub(o.s.F.Mul(o.a, o.z), o.y)
	if y == o.b0 && z == o.c0 {
		o.finished = true
		return 0, false
	}
	o.y, o.z = y, z
	return o.z, true
}
