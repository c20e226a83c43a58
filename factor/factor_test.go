package factor

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New([]PrimePower{{4, 1}})
	assert.Error(t, err)
	_, err = New([]PrimePower{{2, 0}})
	assert.Error(t, err)
	_, err = New([]PrimePower{{3, 1}, {2, 1}})
	assert.Error(t, err)
	f, err := New([]PrimePower{{2, 3}, {3, 2}, {5, 1}})
	require.NoError(t, err)
	assert.Equal(t, uint64(360), f.Value())
}

func TestOfSmall(t *testing.T) {
	f, err := Of(360)
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, uint64(2), f.Prime(0))
	assert.Equal(t, 3, f.Exp(0))
	assert.Equal(t, uint64(3), f.Prime(1))
	assert.Equal(t, 2, f.Exp(1))
	assert.Equal(t, uint64(5), f.Prime(2))
	assert.Equal(t, 1, f.Exp(2))
	assert.Equal(t, uint64(360), f.Value())
}

func TestOfPrime(t *testing.T) {
	f, err := Of(2305843009213693951)
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, uint64(2305843009213693951), f.Prime(0))
	assert.Equal(t, 1, f.Exp(0))
}

func TestOfLargeComposite(t *testing.T) {
	f, err := Of(600851475143)
	require.NoError(t, err)
	require.Equal(t, 4, f.Len())
	assert.Equal(t, uint64(71), f.Prime(0))
	assert.Equal(t, uint64(839), f.Prime(1))
	assert.Equal(t, uint64(1471), f.Prime(2))
	assert.Equal(t, uint64(6857), f.Prime(3))
	assert.Equal(t, uint64(600851475143), f.Value())
}

func TestOfRejectsSmall(t *testing.T) {
	_, err := Of(0)
	assert.Error(t, err)
	_, err = Of(1)
	assert.Error(t, err)
}

func TestTauPhi(t *testing.T) {
	f := MustNew([]PrimePower{{2, 3}, {3, 2}, {5, 1}})
	assert.Equal(t, uint64(24), f.Tau())
	assert.Equal(t, uint64(96), f.Phi())
}

func TestFactor(t *testing.T) {
	f := MustNew([]PrimePower{{2, 3}, {3, 2}, {5, 1}})
	assert.Equal(t, uint64(8), f.Factor(0))
	assert.Equal(t, uint64(9), f.Factor(1))
	assert.Equal(t, uint64(5), f.Factor(2))
}

func TestFromPowers(t *testing.T) {
	f := MustNew([]PrimePower{{2, 2}, {3, 1}, {5, 1}})
	assert.Equal(t, uint64(1), f.FromPowers([]int{0, 0, 0}))
	assert.Equal(t, uint64(12), f.FromPowers([]int{2, 1, 0}))
	assert.Equal(t, uint64(60), f.FromPowers([]int{2, 1, 1}))
}

func TestCountOfOrder(t *testing.T) {
	f := MustNew([]PrimePower{{2, 2}, {3, 1}, {5, 1}})
	// phi of the divisor: phi(1)=1, phi(12)=4, phi(60)=16.
	assert.Equal(t, uint64(1), f.CountOfOrder([]int{0, 0, 0}))
	assert.Equal(t, uint64(4), f.CountOfOrder([]int{2, 1, 0}))
	assert.Equal(t, uint64(16), f.CountOfOrder([]int{2, 1, 1}))
}

func divisorsBelow(n, limit uint64) []uint64 {
	var out []uint64
	for d := uint64(1); d <= limit; d++ {
		if n%d == 0 {
			out = append(out, d)
		}
	}
	return out
}

func drain(f *Factorization, limit uint64, maximalOnly bool) []uint64 {
	s := NewDivisorStream(f, limit, maximalOnly)
	var out []uint64
	for {
		ds, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, f.FromPowers(ds))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestDivisorStreamAll(t *testing.T) {
	f := MustNew([]PrimePower{{2, 3}, {3, 2}, {5, 1}})
	assert.Equal(t, divisorsBelow(360, 25), drain(f, 25, false))
	assert.Equal(t, divisorsBelow(360, 360), drain(f, 360, false))
	assert.Equal(t, []uint64{1}, drain(f, 1, false))
}

func TestDivisorStreamMaximal(t *testing.T) {
	f := MustNew([]PrimePower{{2, 3}, {3, 2}, {5, 1}})
	assert.Equal(t, []uint64{15, 18, 20, 24}, drain(f, 25, true))
	assert.Equal(t, []uint64{360}, drain(f, 360, true))
	assert.Equal(t, []uint64{1}, drain(f, 1, true))
}

func TestMaximalDivisors(t *testing.T) {
	f := MustNew([]PrimePower{{2, 3}, {3, 2}, {5, 1}})
	var got []uint64
	for _, ds := range f.MaximalDivisors(25) {
		got = append(got, f.FromPowers(ds))
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []uint64{15, 18, 20, 24}, got)
}

func TestDivisorStreamNoDuplicates(t *testing.T) {
	f := MustNew([]PrimePower{{2, 4}, {3, 3}, {5, 2}, {7, 1}})
	seen := map[uint64]bool{}
	s := NewDivisorStream(f, f.Value(), false)
	for {
		ds, ok := s.Next()
		if !ok {
			break
		}
		d := f.FromPowers(ds)
		assert.False(t, seen[d], "divisor %d yielded twice", d)
		seen[d] = true
	}
	assert.Equal(t, int(f.Tau()), len(seen))
}

func TestTrieVerdicts(t *testing.T) {
	f := MustNew([]PrimePower{{2, 2}, {3, 1}, {5, 1}})
	trie := NewTrie(f, func(ds []int, parent uint64) uint64 {
		return parent + f.FromPowers(ds)
	})
	// Verdict is the sum of divisors along the canonical chain.
	assert.Equal(t, uint64(1), trie.Verdict([]int{0, 0, 0}))
	assert.Equal(t, uint64(3), trie.Verdict([]int{1, 0, 0}))
	// 1 + 2 + 4 + 12 = 19 along 1 -> 2 -> 4 -> 12.
	assert.Equal(t, uint64(19), trie.Verdict([]int{2, 1, 0}))
}

func TestTrieClassifiesOnce(t *testing.T) {
	f := MustNew([]PrimePower{{2, 2}, {3, 1}, {5, 1}})
	var calls atomic.Int64
	trie := NewTrie(f, func(ds []int, parent uint64) uint64 {
		calls.Add(1)
		return parent + f.FromPowers(ds)
	})

	var queries [][]int
	s := NewDivisorStream(f, f.Value(), false)
	for {
		ds, ok := s.Next()
		if !ok {
			break
		}
		queries = append(queries, ds)
	}
	require.Equal(t, int(f.Tau()), len(queries))

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, ds := range queries {
				want := uint64(0)
				walk := make([]int, len(ds))
				// Recompute the chain sum independently.
				want += f.FromPowers(walk)
				for i, e := range ds {
					for k := 0; k < e; k++ {
						walk[i]++
						want += f.FromPowers(walk)
					}
				}
				assert.Equal(t, want, trie.Verdict(ds))
			}
		}()
	}
	wg.Wait()

	// One classification per node touched, independent of query count.
	assert.Equal(t, int64(f.Tau()), calls.Load())
}

func TestTrieRejectsOutOfRange(t *testing.T) {
	f := MustNew([]PrimePower{{2, 2}, {3, 1}})
	trie := NewTrie(f, func(ds []int, parent int) int { return parent })
	assert.Panics(t, func() { trie.Verdict([]int{3, 0}) })
}
