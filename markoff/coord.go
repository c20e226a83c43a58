package markoff

import (
	"github.com/colbyaustinbrown/libbgs/algebra"
	"github.com/colbyaustinbrown/libbgs/sylow"
)

// FromChiFp returns the coordinate a = chi + chi^-1 for a character of the
// unit group.
func (s *Space) FromChiFp(chi sylow.Elem, d *sylow.Decomp[algebra.FpNum]) algebra.FpNum {
	x := d.Product(chi)
	xInv := d.Product(chi.Inv(d.Fact()))
	return s.F.Add(x, xInv)
}

// FromChiQuad returns the coordinate a = chi + chi^-1 for a character of the
// norm-one subgroup. The sum of a norm-one element and its inverse is its
// trace, which lies in the base field.
func (s *Space) FromChiQuad(chi sylow.Elem, d *sylow.Decomp[algebra.QuadNum]) algebra.FpNum {
	x := d.Product(chi)
	xInv := d.Product(chi.Inv(d.Fact()))
	return s.E.Add(x, xInv).A0
}

// FromChiConjFp returns the antisymmetric part chi - chi^-1 for a character
// of the unit group.
func (s *Space) FromChiConjFp(chi sylow.Elem, d *sylow.Decomp[algebra.FpNum]) algebra.FpNum {
	x := d.Product(chi)
	xInv := d.Product(chi.Inv(d.Fact()))
	return s.F.Sub(x, xInv)
}

// FromChiConjQuad returns the antisymmetric part chi - chi^-1 for a
// character of the norm-one subgroup. The difference is a pure
// sqrt(r)-multiple; its coefficient is returned.
func (s *Space) FromChiConjQuad(chi sylow.Elem, d *sylow.Decomp[algebra.QuadNum]) algebra.FpNum {
	x := d.Product(chi)
	xInv := d.Product(chi.Inv(d.Fact()))
	return s.E.Sub(x, xInv).A1
}

// CoordStream yields the coordinates whose rotation orbits are short: those
// with hyperbolic order at most hyperLim or elliptic order at most
// ellipLim. Orders one and two are skipped, and only one character of each
// chi, chi^-1 pair is enumerated; both map to the same coordinate, so each
// short coordinate appears once.
type CoordStream struct {
	s     *Space
	hyper *sylow.Decomp[algebra.FpNum]
	ellip *sylow.Decomp[algebra.QuadNum]
	hs    *sylow.Stream
	es    *sylow.Stream
}

// NewCoordStream builds the stream from the two decompositions.
func (s *Space) NewCoordStream(
	hyper *sylow.Decomp[algebra.FpNum],
	ellip *sylow.Decomp[algebra.QuadNum],
	hyperLim, ellipLim uint64,
) *CoordStream {
	hs := sylow.NewBuilder(s.MinusFact).
		AddFlag(sylow.NoParabolic | sylow.NoUpperHalf | sylow.LEQ).
		AddTargetsLeq(hyperLim).
		Stream()
	es := sylow.NewBuilder(s.PlusFact).
		AddFlag(sylow.NoParabolic | sylow.NoUpperHalf | sylow.LEQ).
		AddTargetsLeq(ellipLim).
		Stream()
	return &CoordStream{s: s, hyper: hyper, ellip: ellip, hs: hs, es: es}
}

// Next returns the next short coordinate, or false when both conic types
// are exhausted.
func (c *CoordStream) Next() (algebra.FpNum, bool) {
	if c.hs != nil {
		if chi, _, ok := c.hs.Next(); ok {
			return c.s.FromChiFp(chi, c.hyper), true
		}
		c.hs = nil
	}
	if c.es != nil {
		if chi, _, ok := c.es.Next(); ok {
			return c.s.FromChiQuad(chi, c.ellip), true
		}
		c.es = nil
	}
	return 0, false
}
