// Package search drives the per-modulus connectivity search: it decomposes
// the two rotation groups, picks order thresholds from a density heuristic,
// and sweeps every character class either by counting short-orbit partners
// directly or by probing orbits across cosets of the character's subgroup.
package search

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/colbyaustinbrown/libbgs/algebra"
	"github.com/colbyaustinbrown/libbgs/factor"
	"github.com/colbyaustinbrown/libbgs/markoff"
	"github.com/colbyaustinbrown/libbgs/sylow"
)

// ErrNoMagic reports that no coset-permuting element could be found in the
// extension field, which should not happen for any odd prime modulus.
var ErrNoMagic = errors.New("search: no coset-permuting element found")

// Config adjusts one modulus run. The zero value picks everything
// automatically.
type Config struct {
	// Workers caps the goroutines used per character sweep. Zero or one
	// runs sequentially.
	Workers int
	// HyperLimit and EllipLimit override the derived order thresholds when
	// nonzero.
	HyperLimit uint64
	EllipLimit uint64
	// ProbeLen caps how many orbit points are checked per coset
	// representative. Zero means 50.
	ProbeLen int
}

// runner is the per-modulus state shared by both conic sweeps.
type runner struct {
	p           uint64
	space       *markoff.Space
	hyperDecomp *sylow.Decomp[algebra.FpNum]
	ellipDecomp *sylow.Decomp[algebra.QuadNum]
	counts      map[uint64]uint64
	hyperLim    uint64
	ellipLim    uint64
	workers     int
	probe       int
	stats       *Stats
}

// Process runs the search for the odd prime p and reports what it found.
func Process(ctx context.Context, p uint64, cfg Config, logger *zap.SugaredLogger) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "p=%d", p)
	}
	start := time.Now()

	minus, err := factor.Of(p - 1)
	if err != nil {
		return nil, errors.Wrapf(err, "factoring %d", p-1)
	}
	plus, err := factor.Of(p + 1)
	if err != nil {
		return nil, errors.Wrapf(err, "factoring %d", p+1)
	}
	space, err := markoff.NewSpace(p, minus, plus)
	if err != nil {
		return nil, err
	}
	hyperDecomp, err := sylow.NewDecomp[algebra.FpNum](space.Unit, minus)
	if err != nil {
		return nil, err
	}
	ellipDecomp, err := sylow.NewDecomp[algebra.QuadNum](space.Norm1, plus)
	if err != nil {
		return nil, err
	}

	hyperEndgame, ellipEndgame := space.Endgame()
	logger.Debugw("endgame bounds", "p", p, "hyper", hyperEndgame, "ellip", ellipEndgame)

	counts, middleGame := orderCounts(p, minus, plus, hyperEndgame, ellipEndgame)

	hyperLim, ellipLim := hyperEndgame, ellipEndgame
	if middleGame != nil {
		hyperLim = min(*middleGame, hyperEndgame)
		ellipLim = min(*middleGame, ellipEndgame)
	}
	if cfg.HyperLimit != 0 {
		hyperLim = cfg.HyperLimit
	}
	if cfg.EllipLimit != 0 {
		ellipLim = cfg.EllipLimit
	}

	probe := cfg.ProbeLen
	if probe == 0 {
		probe = 50
	}
	r := &runner{
		p:           p,
		space:       space,
		hyperDecomp: hyperDecomp,
		ellipDecomp: ellipDecomp,
		counts:      counts,
		hyperLim:    hyperLim,
		ellipLim:    ellipLim,
		workers:     cfg.Workers,
		probe:       probe,
		stats:       &Stats{},
	}

	magic, err := r.magicElement()
	if err != nil {
		return nil, err
	}

	var a, b uint64
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = r.processTrie(minus, hyperLim,
			func(chi sylow.Elem) algebra.FpNum { return space.FromChiFp(chi, hyperDecomp) },
			func(chi sylow.Elem) algebra.FpNum { return space.FromChiConjFp(chi, hyperDecomp) },
			func(k algebra.FpNum, x sylow.Elem) (algebra.FpNum, error) {
				s := hyperDecomp.Product(x)
				sInv, _ := space.F.Inv(s)
				return space.F.Mul(k, space.F.Add(s, sInv)), nil
			})
		return err
	})
	g.Go(func() error {
		var err error
		b, err = r.processTrie(plus, ellipLim,
			func(chi sylow.Elem) algebra.FpNum { return space.FromChiQuad(chi, ellipDecomp) },
			func(chi sylow.Elem) algebra.FpNum { return space.FromChiConjQuad(chi, ellipDecomp) },
			func(k algebra.FpNum, x sylow.Elem) (algebra.FpNum, error) {
				fix := space.E.Mul(ellipDecomp.Product(x), magic)
				fixInv, _ := space.E.Inv(fix)
				sum := space.E.Add(fix, fixInv)
				if sum.A0 != 0 {
					return 0, errors.Errorf("search: coset representative %v+%v off the antitrace line for p=%d", fix, fixInv, p)
				}
				return space.F.Mul(k, sum.A1), nil
			})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debugw("sweep done", "p", p, "cosetSearches", r.stats.CosetSearches.Load())
	return &Report{
		P:            p,
		Ms:           time.Since(start).Milliseconds(),
		HyperEndgame: hyperEndgame,
		EllipEndgame: ellipEndgame,
		MiddleGame:   middleGame,
		CosetMax:     r.stats.CosetMax.Load(),
		A:            a,
		B:            b,
	}, nil
}

// orderCounts tabulates, for each rotation order t below the endgame bounds,
// how many elements of order dividing t exist on either conic, and finds the
// least threshold t whose short orbits are dense enough to cover the search
// set: t must be at least 1.5 * sum over orders d <= t of
// max((6td)^(1/3), 4td/p), and every larger tabulated order must pass the
// same test.
func orderCounts(
	p uint64,
	minus, plus *factor.Factorization,
	hyperEndgame, ellipEndgame uint64,
) (map[uint64]uint64, *uint64) {
	var orders []uint64
	ds := factor.NewDivisorStream(minus, hyperEndgame, false)
	for {
		v, ok := ds.Next()
		if !ok {
			break
		}
		orders = append(orders, minus.FromPowers(v))
	}
	ds = factor.NewDivisorStream(plus, ellipEndgame, false)
	for {
		v, ok := ds.Next()
		if !ok {
			break
		}
		orders = append(orders, plus.FromPowers(v))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i] < orders[j] })

	counts := make(map[uint64]uint64, len(orders))
	var middleGame *uint64
	for _, t := range orders {
		rhs := 0.0
		var count uint64
		for _, f := range []*factor.Factorization{minus, plus} {
			ms := factor.NewDivisorStream(f, t, true)
			for {
				v, ok := ms.Next()
				if !ok {
					break
				}
				d := float64(f.FromPowers(v))
				a := math.Cbrt(6.0 * float64(t) * d)
				b := 4.0 * float64(t) * d / float64(p)
				if a >= b {
					rhs += 1.5 * a
				} else {
					rhs += 1.5 * b
				}
				count += f.CountOfOrder(v)
			}
		}
		if float64(t) >= rhs {
			if middleGame == nil {
				v := t
				middleGame = &v
			}
		} else {
			middleGame = nil
		}
		counts[t] = count
	}
	return counts, middleGame
}

// magicElement finds an element of the extension field that permutes the
// cosets of each character subgroup so that every representative s satisfies
// ord(s + s^-1) dividing 2(p-1) but not p-1.
func (r *runner) magicElement() (algebra.QuadNum, error) {
	e := r.space.E
	twos := uint64(r.space.PlusFact.Exp(0)) + 1
	// The exponent is (p^2 - 1) / 2^twos, computed in two 64-bit factors.
	lo := (r.p - 1) / 2
	hi := (r.p + 1) >> (twos - 1)
	check := uint64(1) << (twos - 1)
	for i := uint64(1); i <= 2*r.p; i++ {
		c := e.Steinitz(algebra.AffineShift(2*r.p, i))
		if c.IsZero() {
			continue
		}
		res := e.Pow(e.Pow(c, lo), hi)
		if e.Pow(res, check) == e.One() {
			continue
		}
		if r.space.PlusFact.Exp(0) == 1 {
			res = e.Mul(res, r.ellipDecomp.Generator(1))
		}
		return res, nil
	}
	return algebra.QuadNum{}, errors.Wrapf(ErrNoMagic, "p=%d", r.p)
}

type checkKind int

const (
	kindCosets checkKind = iota
	kindSmallOrders
)

// check is a trie verdict: either sweep the cosets of the subgroup named by
// the exponent vector, or count short partners of every character of the
// given order directly.
type check struct {
	kind checkKind
	ds   []int
	ord  uint64
}

// isSmall reports whether the rotation orbit of the coordinate c is below
// the current thresholds. Parabolic coordinates never are.
func (r *runner) isSmall(c algebra.FpNum) bool {
	ord, conic := r.space.RotOrder(c)
	switch conic {
	case markoff.Parabola:
		return false
	case markoff.Hyperbola:
		return ord <= r.hyperLim
	default:
		return ord <= r.ellipLim
	}
}

// processTrie sweeps every character of order at most limit on one conic.
// Each divisor of the group order gets a cached verdict: orders with few
// elements relative to their coset count are handled per-element through
// CoordStream, the rest by walking orbit probes over coset representatives.
// The returned total weighs each covered character class by its order.
func (r *runner) processTrie(
	fact *factor.Factorization,
	limit uint64,
	fromChi func(sylow.Elem) algebra.FpNum,
	fromChiConj func(sylow.Elem) algebra.FpNum,
	cosetRepr func(algebra.FpNum, sylow.Elem) (algebra.FpNum, error),
) (uint64, error) {
	size := fact.Value()
	trie := factor.NewTrie[check](fact, func(ds []int, _ check) check {
		ord := fact.FromPowers(ds)
		cosets := size / ord
		if count, ok := r.counts[ord]; ok {
			if limit == size-1 || count > cosets {
				return check{kind: kindCosets, ds: ds}
			}
			return check{kind: kindSmallOrders, ord: ord}
		}
		return check{kind: kindCosets, ds: ds}
	})

	var mu sync.Mutex
	var firstErr error
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	total := sylow.NewBuilder(fact).
		AddFlag(sylow.NoParabolic | sylow.NoUpperHalf | sylow.LEQ).
		AddTargetsLeq(limit).
		Stream().
		ParSum(r.workers, func(chi sylow.Elem, ds []int) uint64 {
			c := trie.Verdict(ds)
			a := fromChi(chi)
			switch c.kind {
			case kindSmallOrders:
				cs := r.space.NewCoordStream(r.hyperDecomp, r.ellipDecomp, c.ord, c.ord)
				var n uint64
				for {
					b, ok := cs.Next()
					if !ok {
						break
					}
					for _, z := range r.space.Partners(a, b) {
						if r.isSmall(z) {
							n++
						}
					}
				}
				return n
			default:
				// Inverting zero leaves k = 0, which contributes nothing
				// below. NoParabolic keeps chi != chi^-1, so this only
				// guards the thresholds' degenerate settings.
				conj := fromChiConj(chi)
				k, _ := r.space.F.Inv(conj)
				r.stats.CosetSearches.Add(1)
				nested := sylow.NewBuilder(fact).
					AddFlag(sylow.NoUpperHalf).
					AddTargetsLeq(r.p + 1).
					SetQuotient(c.ds).
					Stream()
				var sum uint64
				for {
					x, _, ok := nested.Next()
					if !ok {
						break
					}
					repr, err := cosetRepr(k, x)
					if err != nil {
						record(err)
						return sum
					}
					b := r.space.F.Mul(a, repr)
					if a == 0 && b == 0 {
						continue
					}
					if !r.isSmall(b) {
						continue
					}
					orbit, err := r.space.Part(a, b)
					if err != nil {
						record(errors.Wrapf(err, "coset probe for p=%d", r.p))
						return sum
					}
					covered := true
					count := uint64(0)
					for i := 0; i < r.probe; i++ {
						z, more := orbit.Next()
						if !more {
							break
						}
						count++
						if !r.isSmall(z) {
							covered = false
							break
						}
					}
					r.stats.maxCoset(count)
					if covered {
						sum += chi.Order(fact)
					}
				}
				return sum
			}
		})
	if firstErr != nil {
		return 0, firstErr
	}
	return total, nil
}
