package algebra

// FpNum is a residue modulo the prime of the Fp context that produced it.
type FpNum uint64

// Fp is the arithmetic context for the prime field F_p. The zero value is
// unusable; construct with a prime below 2^63.
type Fp struct {
	P uint64
}

// FromInt reduces v into the field.
func (f Fp) FromInt(v uint64) FpNum { return FpNum(v % f.P) }

func (f Fp) Add(a, b FpNum) FpNum {
	s := uint64(a) + uint64(b)
	if s >= f.P {
		s -= f.P
	}
	return FpNum(s)
}

func (f Fp) Sub(a, b FpNum) FpNum {
	if a < b {
		return FpNum(uint64(a) + f.P - uint64(b))
	}
	return a - b
}

func (f Fp) Neg(a FpNum) FpNum {
	if a == 0 {
		return 0
	}
	return FpNum(f.P - uint64(a))
}

func (f Fp) Mul(a, b FpNum) FpNum {
	return FpNum(MulMod(uint64(a), uint64(b), f.P))
}

func (f Fp) Pow(a FpNum, n uint64) FpNum {
	return FpNum(PowMod(uint64(a), n, f.P))
}

// Inv returns the multiplicative inverse of a, or false for zero.
func (f Fp) Inv(a FpNum) (FpNum, bool) {
	if a == 0 {
		return 0, false
	}
	return f.Pow(a, f.P-2), true
}

// Legendre returns a^((p-1)/2): 1 for residues, p-1 for nonresidues, 0 for 0.
func (f Fp) Legendre(a FpNum) uint64 {
	return PowMod(uint64(a), (f.P-1)/2, f.P)
}

// Sqrt returns a square root of a, or false when a is a quadratic nonresidue.
// Uses Cipolla's algorithm: find t with t^2 - a a nonresidue r, then compute
// (t + sqrt(r))^((p+1)/2) in F_p(sqrt(r)); the result lands in F_p.
func (f Fp) Sqrt(a FpNum) (FpNum, bool) {
	if a == 0 {
		return 0, true
	}
	switch f.Legendre(a) {
	case 0:
		return 0, true
	case f.P - 1:
		return 0, false
	}
	var t, r uint64
	for i := uint64(1); ; i++ {
		t = AffineShift(f.P, i)
		r = (PowMod(t, 2, f.P) + f.P - uint64(a)) % f.P
		if PowMod(r, (f.P-1)/2, f.P) == f.P-1 {
			break
		}
	}
	e := Ext{Fp: f, R: r}
	x := e.Pow(QuadNum{FpNum(t), 1}, (f.P+1)/2)
	return x.A0, true
}

// FindNonresidue returns a quadratic nonresidue modulo p. For p = 3 mod 4 it
// is p-1, for p = 3, 5 mod 8 it is 2; otherwise the affine-shift sampler is
// searched, so the choice is deterministic.
func FindNonresidue(p uint64) uint64 {
	if p%4 == 3 {
		return p - 1
	}
	if p%8 == 3 || p%8 == 5 {
		return 2
	}
	for i := uint64(0); i < p; i++ {
		a := AffineShift(p, i)
		if PowMod(a, (p-1)/2, p) == p-1 {
			return a
		}
	}
	return 0
}
