package search

import (
	"fmt"
	"strings"
)

// Report summarizes one modulus run.
type Report struct {
	P            uint64
	Ms           int64
	HyperEndgame uint64
	EllipEndgame uint64
	// MiddleGame is nil when no order threshold satisfied the density
	// heuristic and the endgame bounds were used directly.
	MiddleGame *uint64
	CosetMax   uint64
	// A and B count characters handled on the hyperbolic and elliptic
	// sides, weighted by coset size where the coset strategy applied.
	A uint64
	B uint64
}

// String renders the report as a single space-separated line.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d %d ", r.P, r.Ms, r.HyperEndgame, r.EllipEndgame)
	if r.MiddleGame == nil {
		b.WriteString("none")
	} else {
		fmt.Fprintf(&b, "%d", *r.MiddleGame)
	}
	fmt.Fprintf(&b, " %d %d %d", r.CosetMax, r.A, r.B)
	return b.String()
}
