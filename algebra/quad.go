package algebra

// QuadNum is an element a0 + a1*sqrt(r) of the quadratic extension F_p^2.
// Both coefficients are residues of the Ext context that produced it.
type QuadNum struct {
	A0, A1 FpNum
}

// IsZero reports whether q is the additive identity.
func (q QuadNum) IsZero() bool { return q.A0 == 0 && q.A1 == 0 }

// Ext is the arithmetic context for F_p^2 = F_p(sqrt(R)), with R a fixed
// quadratic nonresidue modulo P.
type Ext struct {
	Fp Fp
	R  uint64
}

// NewExt builds the quadratic extension of F_p with a deterministic
// nonresidue.
func NewExt(f Fp) Ext {
	return Ext{Fp: f, R: FindNonresidue(f.P)}
}

func (e Ext) One() QuadNum { return QuadNum{1, 0} }

// FromFp embeds a field element into the extension.
func (e Ext) FromFp(a FpNum) QuadNum { return QuadNum{a, 0} }

// Steinitz returns the i-th element of the extension in the Steinitz
// enumeration (i % p) + (i / p) sqrt(r).
func (e Ext) Steinitz(i uint64) QuadNum {
	return QuadNum{e.Fp.FromInt(i % e.Fp.P), e.Fp.FromInt(i / e.Fp.P)}
}

func (e Ext) Add(a, b QuadNum) QuadNum {
	return QuadNum{e.Fp.Add(a.A0, b.A0), e.Fp.Add(a.A1, b.A1)}
}

func (e Ext) Sub(a, b QuadNum) QuadNum {
	return QuadNum{e.Fp.Sub(a.A0, b.A0), e.Fp.Sub(a.A1, b.A1)}
}

func (e Ext) Mul(a, b QuadNum) QuadNum {
	r := e.Fp.FromInt(e.R)
	return QuadNum{
		e.Fp.Add(e.Fp.Mul(a.A0, b.A0), e.Fp.Mul(a.A1, e.Fp.Mul(b.A1, r))),
		e.Fp.Add(e.Fp.Mul(a.A1, b.A0), e.Fp.Mul(a.A0, b.A1)),
	}
}

func (e Ext) Pow(a QuadNum, n uint64) QuadNum {
	y := e.One()
	for n > 0 {
		if n&1 == 1 {
			y = e.Mul(y, a)
		}
		a = e.Mul(a, a)
		n >>= 1
	}
	return y
}

// Conj returns the Frobenius conjugate a0 - a1*sqrt(r), which equals a^p.
func (e Ext) Conj(a QuadNum) QuadNum {
	return QuadNum{a.A0, e.Fp.Neg(a.A1)}
}

// Inv returns the inverse of a in the full extension field, conj(a)/norm(a).
// The second return is false for zero.
func (e Ext) Inv(a QuadNum) (QuadNum, bool) {
	n, ok := e.Fp.Inv(e.Norm(a))
	if !ok {
		return QuadNum{}, false
	}
	c := e.Conj(a)
	return QuadNum{e.Fp.Mul(c.A0, n), e.Fp.Mul(c.A1, n)}, true
}

// Norm returns a * conj(a) = a0^2 - r*a1^2, an element of F_p.
func (e Ext) Norm(a QuadNum) FpNum {
	return e.Fp.Sub(e.Fp.Mul(a.A0, a.A0), e.Fp.Mul(a.A1, e.Fp.Mul(a.A1, e.Fp.FromInt(e.R))))
}

// Sqrt returns a square root of the field element a inside the extension.
// The root lies in F_p (A1 == 0) exactly when a is a quadratic residue;
// otherwise it is a pure sqrt(r)-multiple.
func (e Ext) Sqrt(a FpNum) QuadNum {
	if y, ok := e.Fp.Sqrt(a); ok {
		return QuadNum{y, 0}
	}
	rInv, _ := e.Fp.Inv(e.Fp.FromInt(e.R))
	y, _ := e.Fp.Sqrt(e.Fp.Mul(a, rInv))
	return QuadNum{0, y}
}
