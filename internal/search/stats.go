package search

import "sync/atomic"

// Stats collects diagnostic counters for one modulus run. All fields are
// safe under concurrent update.
type Stats struct {
	// CosetSearches counts nested coset enumerations started.
	CosetSearches atomic.Uint64
	// CosetMax is the longest orbit probe seen.
	CosetMax atomic.Uint64
}

func (s *Stats) maxCoset(n uint64) {
	for {
		cur := s.CosetMax.Load()
		if n <= cur || s.CosetMax.CompareAndSwap(cur, n) {
			return
		}
	}
}
