package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colbyaustinbrown/libbgs/factor"
)

// Mersenne prime 2^61 - 1; p - 1 = 2 * 3^2 * 5^2 * 7 * 11 * 13 * 31 * 41 *
// 61 * 151 * 331 * 1321, p + 1 = 2^61.
const bigP = uint64(2305843009213693951)

func bigPMinusOne() *factor.Factorization {
	return factor.MustNew([]factor.PrimePower{
		{Prime: 2, Exp: 1}, {Prime: 3, Exp: 2}, {Prime: 5, Exp: 2},
		{Prime: 7, Exp: 1}, {Prime: 11, Exp: 1}, {Prime: 13, Exp: 1},
		{Prime: 31, Exp: 1}, {Prime: 41, Exp: 1}, {Prime: 61, Exp: 1},
		{Prime: 151, Exp: 1}, {Prime: 331, Exp: 1}, {Prime: 1321, Exp: 1},
	})
}

func TestFpMultiplies(t *testing.T) {
	f := Fp{7}
	x := f.Mul(3, 5)
	assert.Equal(t, FpNum(1), x)
	assert.Equal(t, FpNum(2), f.Mul(3, 3))
	assert.Equal(t, FpNum(4), f.Mul(2, 2))
}

func TestFpAddSub(t *testing.T) {
	f := Fp{7}
	assert.Equal(t, FpNum(1), f.Add(3, 5))
	assert.Equal(t, FpNum(5), f.Sub(3, 5))
	assert.Equal(t, FpNum(4), f.Neg(3))
	assert.Equal(t, FpNum(0), f.Neg(0))
}

func TestFpPowers(t *testing.T) {
	f := Fp{7}
	assert.Equal(t, FpNum(4), f.Pow(2, 5))
	assert.Equal(t, FpNum(6), f.Pow(3, 3))
	assert.Equal(t, FpNum(1), f.Pow(5, 6))
	assert.Equal(t, FpNum(1), f.Pow(5, 0))
}

func TestFpPowersBig(t *testing.T) {
	f := Fp{bigP}
	assert.Equal(t, FpNum(1), f.Pow(3, bigP-1))
}

func TestFpInverts(t *testing.T) {
	f := Fp{13}
	for i := FpNum(2); i < 13; i++ {
		x, ok := f.Inv(i)
		require.True(t, ok)
		assert.NotEqual(t, FpNum(1), x)
		assert.Equal(t, FpNum(1), f.Mul(x, i))
	}
	_, ok := f.Inv(0)
	assert.False(t, ok)
}

func TestFpSqrt(t *testing.T) {
	f := Fp{13}
	nonresidues := 0
	for i := FpNum(1); i < 13; i++ {
		y, ok := f.Sqrt(i)
		if !ok {
			nonresidues++
			continue
		}
		assert.Equal(t, i, f.Mul(y, y))
	}
	assert.Equal(t, 6, nonresidues)
}

func TestFpSqrtBig(t *testing.T) {
	f := Fp{bigP}
	found := 0
	for i := FpNum(3); i < 103; i++ {
		y, ok := f.Sqrt(i)
		if !ok {
			continue
		}
		found++
		assert.Equal(t, i, f.Mul(y, y))
	}
	assert.Greater(t, found, 0)
}

func TestFindNonresidue(t *testing.T) {
	// One prime from each branch: 3 mod 4, 5 mod 8, 1 mod 8.
	for _, p := range []uint64{7, 13, 17, 41, 97} {
		f := Fp{p}
		r := FindNonresidue(p)
		require.NotZero(t, r)
		assert.Equal(t, p-1, f.Legendre(f.FromInt(r)))
	}
}

func TestAffineShiftPermutes(t *testing.T) {
	for _, q := range []uint64{7, 12, 61} {
		seen := map[uint64]bool{}
		for i := uint64(0); i < q; i++ {
			seen[AffineShift(q, i)] = true
		}
		assert.Equal(t, int(q), len(seen))
	}
}

func TestExtNonresidueR(t *testing.T) {
	e := NewExt(Fp{7})
	for i := uint64(2); i < 7; i++ {
		assert.NotEqual(t, e.R, i*i%7)
	}
}

func TestExtPowers(t *testing.T) {
	e := NewExt(Fp{7})
	x := e.Pow(QuadNum{3, 4}, 48)
	assert.Equal(t, e.One(), x)
}

func TestExtPowersBig(t *testing.T) {
	e := NewExt(Fp{bigP})
	x := e.Pow(QuadNum{3, 5}, bigP-1)
	x = e.Pow(x, bigP+1)
	assert.Equal(t, e.One(), x)
}

func TestExtSqrt(t *testing.T) {
	e := NewExt(Fp{bigP})
	for i := FpNum(3); i < 103; i++ {
		x := e.Sqrt(i)
		y := e.Mul(x, x)
		assert.Equal(t, e.FromFp(i), y)
		assert.NotEqual(t, e.FromFp(i), x)
	}
}

func TestExtConjNorm(t *testing.T) {
	e := NewExt(Fp{61})
	x := QuadNum{17, 42}
	// x * conj(x) lands in the base field and equals the norm.
	prod := e.Mul(x, e.Conj(x))
	assert.Equal(t, FpNum(0), prod.A1)
	assert.Equal(t, e.Norm(x), prod.A0)
}

func TestUnitGroupBasics(t *testing.T) {
	g := UnitGroup{Fp{13}}
	assert.Equal(t, uint64(12), g.Size())
	assert.Equal(t, FpNum(1), g.One())
	for i := FpNum(2); i < 13; i++ {
		inv := Inverse[FpNum](g, i)
		assert.Equal(t, FpNum(1), g.Mul(i, inv))
	}
}

func TestNorm1Candidates(t *testing.T) {
	g := Norm1Group{NewExt(Fp{17})}
	assert.Equal(t, uint64(18), g.Size())
	for i := uint64(1); i < 10; i++ {
		c := g.Candidate(i)
		if c.IsZero() {
			continue
		}
		// Candidates are (p-1)-th powers, so they have norm one.
		assert.Equal(t, FpNum(1), g.E.Norm(c))
		assert.Equal(t, g.One(), Pow[QuadNum](g, c, g.Size()))
	}
}

func TestOrder(t *testing.T) {
	g := UnitGroup{Fp{13}}
	fact := factor.MustNew([]factor.PrimePower{{Prime: 2, Exp: 2}, {Prime: 3, Exp: 1}})
	for i := FpNum(1); i < 13; i++ {
		ord := Order[FpNum](g, i, fact)
		assert.Equal(t, FpNum(1), Pow[FpNum](g, i, ord))
		if ord > 1 {
			for _, q := range []uint64{2, 3} {
				if ord%q == 0 {
					assert.NotEqual(t, FpNum(1), Pow[FpNum](g, i, ord/q))
				}
			}
		}
	}
}

func TestOrderBig(t *testing.T) {
	g := UnitGroup{Fp{bigP}}
	fact := bigPMinusOne()
	ord := Order[FpNum](g, 3, fact)
	assert.Equal(t, FpNum(1), Pow[FpNum](g, 3, ord))
	assert.Equal(t, uint64(0), (bigP-1)%ord)
}
