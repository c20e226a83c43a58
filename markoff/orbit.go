package markoff

import "github.com/colbyaustinbrown/libbgs/algebra"

// Disjoint is a union-find over keys of type K, carrying a verdict of type
// V per set. Verdicts merge with the combine callback when sets join.
type Disjoint[K comparable, V any] struct {
	deflt   V
	combine func(V, V) V
	parent  map[K]K
	rank    map[K]int
	data    map[K]V
}

// NewDisjoint returns an empty union-find. New sets start with the default
// verdict.
func NewDisjoint[K comparable, V any](deflt V, combine func(V, V) V) *Disjoint[K, V] {
	return &Disjoint[K, V]{
		deflt:   deflt,
		combine: combine,
		parent:  map[K]K{},
		rank:    map[K]int{},
		data:    map[K]V{},
	}
}

func (d *Disjoint[K, V]) root(k K) (K, bool) {
	p, ok := d.parent[k]
	if !ok {
		return k, false
	}
	for p != k {
		gp := d.parent[p]
		d.parent[k] = gp
		k, p = p, gp
	}
	return k, true
}

func (d *Disjoint[K, V]) add(k K) K {
	if r, ok := d.root(k); ok {
		return r
	}
	d.parent[k] = k
	d.data[k] = d.deflt
	return k
}

// Associate places a and b in the same set, creating either as needed.
func (d *Disjoint[K, V]) Associate(a, b K) {
	ra := d.add(a)
	rb := d.add(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.data[ra] = d.combine(d.data[ra], d.data[rb])
	delete(d.data, rb)
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

// Update overwrites the verdict of k's set, creating the set if needed.
func (d *Disjoint[K, V]) Update(k K, v V) {
	r := d.add(k)
	d.data[r] = v
}

// Orbits returns the verdict per set root.
func (d *Disjoint[K, V]) Orbits() map[K]V {
	out := make(map[K]V, len(d.data))
	for k, v := range d.data {
		out[k] = v
	}
	return out
}

// OrbitTester partitions a set of target coordinates into rotation orbits.
// For every unordered pair of targets it solves for the completing third
// coordinates and links targets reached through them; pairs completing only
// outside the target set poison their orbits' verdicts.
type OrbitTester struct {
	s       *Space
	targets map[algebra.FpNum]bool
}

// OrbitResults is the outcome of a tester run: one union-find per target,
// plus the count of pairs with no completion at all.
type OrbitResults struct {
	Failures uint64
	Results  map[algebra.FpNum]*Disjoint[algebra.FpNum, bool]
}

// NewOrbitTester returns a tester with no targets.
func NewOrbitTester(s *Space) *OrbitTester {
	return &OrbitTester{s: s, targets: map[algebra.FpNum]bool{}}
}

// AddTarget adds a coordinate to the target set.
func (t *OrbitTester) AddTarget(v algebra.FpNum) *OrbitTester {
	t.targets[v] = true
	return t
}

// Run tests all pairs and returns the partition.
func (t *OrbitTester) Run() *OrbitResults {
	results := make(map[algebra.FpNum]*Disjoint[algebra.FpNum, bool], len(t.targets))
	and := func(a, b bool) bool { return a && b }
	ordered := make([]algebra.FpNum, 0, len(t.targets))
	for x := range t.targets {
		results[x] = NewDisjoint[algebra.FpNum, bool](true, and)
		ordered = append(ordered, x)
	}

	var failures uint64
	for i, x := range ordered {
		for _, y := range ordered[i:] {
			cands := t.s.Partners(x, y)
			if cands == nil {
				failures++
			}
			disjoint := results[x]
			for _, z := range cands {
				if t.targets[z] {
					disjoint.Associate(x, z)
					disjoint.Associate(y, z)
				} else {
					disjoint.Update(x, false)
					disjoint.Update(y, false)
				}
			}
		}
	}
	return &OrbitResults{Failures: failures, Results: results}
}
