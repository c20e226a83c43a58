package factor

// DivisorStream lazily enumerates the divisors of a factored value that do
// not exceed a limit, yielding each as an exponent vector aligned with the
// factorization's primes. With maximalOnly set, only divisors d for which
// every proper multiple dividing the value exceeds the limit are yielded.
//
// Each divisor below the limit is reached exactly once: a vector is only
// extended at prime indices at or after the last index incremented.
type DivisorStream struct {
	source      []PrimePower
	limit       uint64
	maximalOnly bool
	stack       []frame
}

type frame struct {
	i  int
	ds []int
}

// NewDivisorStream starts an enumeration over the divisors of f's value
// that are at most limit.
func NewDivisorStream(f *Factorization, limit uint64, maximalOnly bool) *DivisorStream {
	return &DivisorStream{
		source:      f.pps,
		limit:       limit,
		maximalOnly: maximalOnly,
		stack:       []frame{{0, make([]int, len(f.pps))}},
	}
}

// Next returns the next divisor's exponent vector, or false when the stream
// is exhausted. The returned slice is owned by the caller.
func (s *DivisorStream) Next() ([]int, bool) {
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		prod := uint64(1)
		for j, e := range top.ds {
			prod *= intPow(s.source[j].Prime, e)
		}

		maximal := true
		for j := top.i; j < len(s.source); j++ {
			if top.ds[j] == s.source[j].Exp {
				continue
			}
			if s.exceeds(prod, s.source[j].Prime) {
				break
			}
			next := make([]int, len(top.ds))
			copy(next, top.ds)
			next[j]++
			s.stack = append(s.stack, frame{j, next})
			maximal = false
		}

		if s.maximalOnly {
			// A divisor pushed no children only because they all lie before
			// top.i may still have a small multiple; check the first prime
			// with room to grow.
			if maximal {
				for j, pp := range s.source {
					if top.ds[j] < pp.Exp {
						maximal = s.exceeds(prod, pp.Prime)
						break
					}
				}
			}
			if !maximal {
				continue
			}
		}
		return top.ds, true
	}
	return nil, false
}

// exceeds reports whether prod*p > s.limit without overflowing.
func (s *DivisorStream) exceeds(prod, p uint64) bool {
	return prod > s.limit || p > s.limit/prod
}
