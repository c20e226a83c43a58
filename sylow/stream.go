package sylow

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/colbyaustinbrown/libbgs/algebra"
	"github.com/colbyaustinbrown/libbgs/factor"
)

// Flags adjust which coordinate vectors a Stream yields.
type Flags uint8

const (
	// NoUpperHalf yields only one of x and x^-1 for each pair: the first
	// nonzero coordinate stays below half its prime-power modulus.
	NoUpperHalf Flags = 1 << iota
	// LEQ widens every target to all orders dividing it.
	LEQ
	// NoParabolic drops the elements of order one and two.
	NoParabolic
	// IncludeOne forces the identity into the yields.
	IncludeOne
)

// stack chunking bound: propagating a seed pushes at most this many
// increments before parking a continuation seed.
const stackAdditionLimit = 127

// Builder configures a Stream over the divisor lattice of a factorization.
// Targets name the orders to yield; flags and the quotient restrict or widen
// the walk. A Builder is not safe for concurrent use; the Streams it makes
// are independent.
type Builder struct {
	fact     *factor.Factorization
	mode     Flags
	root     *tnode
	quotient []int
	prune    func(ds []int) bool
}

type tnode struct {
	index    int
	ds       []int
	this     bool
	children []*tnode
}

// NewBuilder returns a Builder with no targets over the given factorization.
func NewBuilder(fact *factor.Factorization) *Builder {
	n := fact.Len()
	return &Builder{
		fact: fact,
		root: &tnode{ds: make([]int, n), children: make([]*tnode, n)},
	}
}

// AddFlag sets the given flags.
func (b *Builder) AddFlag(f Flags) *Builder {
	b.mode |= f
	return b
}

// SetQuotient restricts the walk to coset representatives of the subgroup
// generated by elements of the order q represents. Passing nil removes the
// restriction.
func (b *Builder) SetQuotient(q []int) *Builder {
	b.quotient = q
	return b
}

// Prune suppresses yields at divisors for which pred returns true; the walk
// still descends through them.
func (b *Builder) Prune(pred func(ds []int) bool) *Builder {
	b.prune = pred
	return b
}

// AddTarget marks the order named by the exponent vector t. Under LEQ every
// divisor of t is marked as well.
func (b *Builder) AddTarget(t []int) *Builder {
	zero := true
	for _, e := range t {
		if e != 0 {
			zero = false
			break
		}
	}
	if zero {
		b.mode |= IncludeOne
	}
	b.addTo(b.root, t)
	return b
}

func (b *Builder) addTo(n *tnode, t []int) {
	if !n.this {
		match := t[n.index] == n.ds[n.index]
		if match {
			for j := n.index + 1; j < len(t); j++ {
				if t[j] != 0 {
					match = false
					break
				}
			}
		}
		n.this = b.mode&LEQ != 0 || match
	}
	for j := n.index; j < len(t); j++ {
		if t[j] > n.ds[j] {
			b.addTo(b.child(n, j), t)
			if b.mode&LEQ == 0 {
				break
			}
		}
	}
}

func (b *Builder) child(n *tnode, j int) *tnode {
	if n.children[j] == nil {
		ds := make([]int, len(n.ds))
		copy(ds, n.ds)
		ds[j]++
		n.children[j] = &tnode{
			index:    j,
			ds:       ds,
			children: make([]*tnode, len(n.children)),
		}
	}
	return n.children[j]
}

// AddTargetsLeq sets LEQ and marks every divisor of the factored value not
// exceeding limit, by way of the maximal divisors below it.
func (b *Builder) AddTargetsLeq(limit uint64) *Builder {
	b.AddFlag(LEQ)
	for _, ds := range b.fact.MaximalDivisors(limit) {
		b.AddTarget(ds)
	}
	return b
}

// Stream is a depth-first walk yielding the coordinate vectors the Builder
// asked for, together with the exponent vector of each element's order.
type Stream struct {
	fact   *factor.Factorization
	stack  []seed
	buffer []emission
}

type snode struct {
	index       int
	ds          []int
	this        bool
	descendants int
	step, lim   uint64
	children    []*snode
}

type seed struct {
	part  Elem
	start uint64
	node  *snode
}

type emission struct {
	elem Elem
	ds   []int
}

// Stream freezes the Builder's configuration into a walkable stream.
func (b *Builder) Stream() *Stream {
	n := b.fact.Len()

	lims := make([]uint64, n)
	for i := 0; i < n; i++ {
		q := 0
		if b.quotient != nil {
			q = b.quotient[i]
		}
		if q <= b.fact.Exp(i) {
			lims[i] = algebra.IntPow(b.fact.Prime(i), uint64(b.fact.Exp(i)-q))
		}
	}

	root := b.freeze(b.root, lims, b.mode&NoUpperHalf != 0)

	s := &Stream{fact: b.fact}
	if b.mode&IncludeOne != 0 || (b.mode&LEQ != 0 && b.mode&NoParabolic == 0) {
		s.buffer = append(s.buffer, emission{One(n), root.ds})
	}

	for i := 0; i < n; i++ {
		c := root.children[i]
		if c == nil || (!c.this && c.descendants == 0) {
			continue
		}
		sd := seed{part: One(n), node: c}
		if b.mode&NoParabolic != 0 && b.fact.Prime(i) == 2 {
			// Walk the 2-Sylow subtree without yielding its first level;
			// this discards exactly the elements of order two.
			s.propagate(sd, func(Elem, []int) {})
		} else {
			s.stack = append(s.stack, sd)
		}
	}
	return s
}

// freeze maps the target trie into walk nodes, attaching the coordinate
// step, the coordinate limit (halved where the upper-half cut applies), and
// the count of yielding descendants.
func (b *Builder) freeze(n *tnode, lims []uint64, block bool) *snode {
	out := &snode{
		index:    n.index,
		ds:       n.ds,
		this:     n.this && (b.prune == nil || !b.prune(n.ds)),
		step:     algebra.IntPow(b.fact.Prime(n.index), uint64(b.fact.Exp(n.index)-n.ds[n.index])),
		lim:      lims[n.index],
		children: make([]*snode, len(n.children)),
	}
	if block {
		out.lim /= 2
	}
	p := b.fact.Prime(n.index)
	for j := n.index; j < len(n.children); j++ {
		if n.children[j] == nil {
			continue
		}
		childBlock := ((p == 2 && n.ds[0] <= 1) || j == n.index) && block
		c := b.freeze(n.children[j], lims, childBlock)
		out.children[j] = c
		out.descendants += c.descendants
		if c.this {
			out.descendants++
		}
	}
	return out
}

// propagate expands one seed: it walks the increments of the seed's prime
// coordinate, pushing same-prime descents, yielding marked vectors, and
// seeding the later primes once the current coordinate is nonzero.
func (s *Stream) propagate(sd seed, consume func(Elem, []int)) {
	node := sd.node
	p := s.fact.Prime(node.index)

	stop := p
	if stop-sd.start > stackAdditionLimit {
		s.stack = append(s.stack, seed{part: sd.part, start: sd.start + stackAdditionLimit, node: node})
		stop = sd.start + stackAdditionLimit
	}

	for j := sd.start; j < stop; j++ {
		if j > 0 && node.step > node.lim/j {
			break
		}
		tmp := sd.part[node.index] + j*node.step
		if tmp > node.lim {
			break
		}
		part := sd.part.Clone()
		part[node.index] = tmp

		if c := node.children[node.index]; c != nil {
			s.stack = append(s.stack, seed{part: part, node: c})
		}

		if j == 0 {
			continue
		}
		if node.this {
			consume(part, node.ds)
		}
		for i := node.index + 1; i < len(node.children); i++ {
			c := node.children[i]
			if c == nil || (!c.this && c.descendants == 0) {
				continue
			}
			s.stack = append(s.stack, seed{part: part, node: c})
		}
	}
}

// Next returns the next coordinate vector and the exponent vector of its
// order, or false when the walk is done. The ds slice is shared and must
// not be modified.
func (s *Stream) Next() (Elem, []int, bool) {
	for {
		if n := len(s.buffer); n > 0 {
			e := s.buffer[n-1]
			s.buffer = s.buffer[:n-1]
			return e.elem, e.ds, true
		}
		if len(s.stack) == 0 {
			return nil, nil, false
		}
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.propagate(top, func(e Elem, ds []int) {
			s.buffer = append(s.buffer, emission{e, ds})
		})
	}
}

// Count drains the stream and returns the number of yields.
func (s *Stream) Count() uint64 {
	var n uint64
	for {
		if _, _, ok := s.Next(); !ok {
			return n
		}
		n++
	}
}

// ParSum reduces fn over every yield using the given number of workers. The
// frontier is first expanded until it has enough independent seeds, then
// dealt out; partial sums are added, so fn must be associative-safe and
// goroutine-safe. Yield order is unspecified.
func (s *Stream) ParSum(workers int, fn func(Elem, []int) uint64) uint64 {
	var total uint64
	for _, e := range s.buffer {
		total += fn(e.elem, e.ds)
	}
	s.buffer = nil

	if workers <= 1 {
		for {
			e, ds, ok := s.Next()
			if !ok {
				return total
			}
			total += fn(e, ds)
		}
	}

	for len(s.stack) > 0 && len(s.stack) < workers*4 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.propagate(top, func(e Elem, ds []int) {
			total += fn(e, ds)
		})
	}

	subs := make([]*Stream, workers)
	for i := range subs {
		subs[i] = &Stream{fact: s.fact}
	}
	for i, sd := range s.stack {
		w := subs[i%workers]
		w.stack = append(w.stack, sd)
	}
	s.stack = nil

	var mu sync.Mutex
	g := new(errgroup.Group)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			var local uint64
			for {
				e, ds, ok := sub.Next()
				if !ok {
					break
				}
				local += fn(e, ds)
			}
			mu.Lock()
			total += local
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return total
}
