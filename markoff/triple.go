package markoff

import "github.com/colbyaustinbrown/libbgs/algebra"

// Triple is a solution (a, b, c) of x^2 + y^2 + z^2 - xyz = 0 modulo p.
type Triple struct {
	A, B, C algebra.FpNum
}

// Pos names one coordinate of a triple.
type Pos int

const (
	PosA Pos = iota
	PosB
	PosC
)

// NewTriple checks that (a, b, c) is a solution and wraps it.
func (s *Space) NewTriple(a, b, c algebra.FpNum) (Triple, bool) {
	lhs := s.F.Add(s.F.Add(s.F.Mul(a, a), s.F.Mul(b, b)), s.F.Mul(c, c))
	if lhs != s.F.Mul(a, s.F.Mul(b, c)) {
		return Triple{}, false
	}
	return Triple{a, b, c}, true
}

// Vieta returns the triple with the named coordinate replaced by the other
// root of its quadratic: the Vieta involution.
func (s *Space) Vieta(t Triple, pos Pos) Triple {
	switch pos {
	case PosA:
		return Triple{s.F.Sub(s.F.Mul(t.B, t.C), t.A), t.B, t.C}
	case PosB:
		return Triple{t.A, s.F.Sub(s.F.Mul(t.A, t.C), t.B), t.C}
	default:
		return Triple{t.A, t.B, s.F.Sub(s.F.Mul(t.A, t.B), t.C)}
	}
}

// Get returns the named coordinate.
func (t Triple) Get(pos Pos) algebra.FpNum {
	switch pos {
	case PosA:
		return t.A
	case PosB:
		return t.B
	default:
		return t.C
	}
}
