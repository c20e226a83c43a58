package factor

import (
	"sync"
	"sync/atomic"
)

// Trie classifies divisors of a factored value, caching one verdict per
// divisor. Nodes are exponent vectors; each node's verdict is computed from
// its vector and its parent's verdict by the classify callback, at most once
// even under concurrent lookups.
//
// Nodes are reached along the canonical path that raises exponents in
// nondecreasing prime-index order, so every divisor has exactly one node.
type Trie[V any] struct {
	fact     *Factorization
	classify func(ds []int, parent V) V
	root     *trieNode[V]
}

type trieNode[V any] struct {
	ds       []int
	parent   *trieNode[V]
	once     sync.Once
	verdict  V
	children []atomic.Pointer[trieNode[V]]
}

// NewTrie builds an empty trie over the divisors of f's value. classify is
// called lazily; for the root (divisor 1) the parent verdict is the zero V.
func NewTrie[V any](f *Factorization, classify func(ds []int, parent V) V) *Trie[V] {
	root := &trieNode[V]{
		ds:       make([]int, f.Len()),
		children: make([]atomic.Pointer[trieNode[V]], f.Len()),
	}
	return &Trie[V]{fact: f, classify: classify, root: root}
}

// Fact returns the factorization the trie is built over.
func (t *Trie[V]) Fact() *Factorization { return t.fact }

// Verdict returns the classification of the divisor represented by ds,
// computing it and any missing ancestors on the way down.
func (t *Trie[V]) Verdict(ds []int) V {
	n := t.root
	for i, e := range ds {
		if e > t.fact.Exp(i) {
			panic("factor: exponent vector outside factorization")
		}
		for k := 0; k < e; k++ {
			n = n.child(i)
		}
	}
	return n.value(t)
}

func (n *trieNode[V]) child(i int) *trieNode[V] {
	if c := n.children[i].Load(); c != nil {
		return c
	}
	ds := make([]int, len(n.ds))
	copy(ds, n.ds)
	ds[i]++
	fresh := &trieNode[V]{
		ds:       ds,
		parent:   n,
		children: make([]atomic.Pointer[trieNode[V]], len(n.children)),
	}
	if n.children[i].CompareAndSwap(nil, fresh) {
		return fresh
	}
	return n.children[i].Load()
}

func (n *trieNode[V]) value(t *Trie[V]) V {
	n.once.Do(func() {
		var parent V
		if n.parent != nil {
			parent = n.parent.value(t)
		}
		n.verdict = t.classify(n.ds, parent)
	})
	return n.verdict
}
