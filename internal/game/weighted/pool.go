// Package weighted provides a generic weighted-choice pool supporting draws
// with and without replacement, locked keys, and probability queries.
package weighted

import (
	"math"
	"slices"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
)

// Entry is a single weighted key with an optional payload.
type Entry[K comparable, V any] struct {
	Key    K
	Weight float64
	Data   V
}

// Pool is an ordered list of weighted entries.
//
// Invariant: entries keep insertion order; draws break ties by insertion order.
// Entries with weight <= 0 are kept but can never be drawn.
type Pool[K comparable, V any] struct {
	entries []Entry[K, V]
}

// New returns an empty Pool.
func New[K comparable, V any]() *Pool[K, V] {
	return &Pool[K, V]{}
}

// Push appends an entry. An optional payload may be attached.
//
// Postcondition: Len() increases by one.
func (p *Pool[K, V]) Push(key K, weight float64, data ...V) {
	e := Entry[K, V]{Key: key, Weight: weight}
	if len(data) > 0 {
		e.Data = data[0]
	}
	p.entries = append(p.entries, e)
}

// Len returns the number of entries.
func (p *Pool[K, V]) Len() int { return len(p.entries) }

// Keys returns the keys in insertion order.
func (p *Pool[K, V]) Keys() []K {
	out := make([]K, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Key
	}
	return out
}

// Entries returns a copy of the entries in insertion order.
func (p *Pool[K, V]) Entries() []Entry[K, V] {
	return slices.Clone(p.entries)
}

func (p *Pool[K, V]) find(key K) (Entry[K, V], bool) {
	for _, e := range p.entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry[K, V]{}, false
}

// Data returns the payload of the first entry with key.
func (p *Pool[K, V]) Data(key K) (V, bool) {
	e, ok := p.find(key)
	return e.Data, ok
}

// Weight returns the relative weight of the first entry with key, or 0.
func (p *Pool[K, V]) Weight(key K) float64 {
	e, _ := p.find(key)
	return e.Weight
}

// TotalWeight returns the sum of all positive weights.
func (p *Pool[K, V]) TotalWeight() float64 {
	total := 0.0
	for _, e := range p.entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// Probability returns Weight(key) / TotalWeight(), or 0 for unknown keys or an
// empty pool.
//
// Postcondition: result is in [0, 1].
func (p *Pool[K, V]) Probability(key K) float64 {
	total := p.TotalWeight()
	if total == 0 {
		return 0
	}
	w := p.Weight(key)
	if w <= 0 {
		return 0
	}
	return w / total
}

// MaxProbability returns the normalised probability of the heaviest entry,
// or 0 when the pool has no drawable mass.
func (p *Pool[K, V]) MaxProbability() float64 {
	total := p.TotalWeight()
	if total == 0 {
		return 0
	}
	m := 0.0
	for _, e := range p.entries {
		m = math.Max(m, e.Weight)
	}
	return m / total
}

// MinProbability returns the normalised probability of the lightest drawable
// entry, or 0 when the pool has no drawable mass.
func (p *Pool[K, V]) MinProbability() float64 {
	total := p.TotalWeight()
	if total == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, e := range p.entries {
		if e.Weight > 0 {
			m = math.Min(m, e.Weight)
		}
	}
	return m / total
}

// Filter returns a new Pool with the entries for which keep returns true.
func (p *Pool[K, V]) Filter(keep func(Entry[K, V]) bool) *Pool[K, V] {
	out := New[K, V]()
	for _, e := range p.entries {
		if keep(e) {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// Drop returns a new Pool without any entry keyed by key.
func (p *Pool[K, V]) Drop(key K) *Pool[K, V] {
	return p.Filter(func(e Entry[K, V]) bool { return e.Key != key })
}

// Clone returns an independent copy of the pool.
func (p *Pool[K, V]) Clone() *Pool[K, V] {
	return &Pool[K, V]{entries: slices.Clone(p.entries)}
}

// Draw returns up to count keys chosen with probability proportional to
// weight. Without replacement each drawn entry's weight mass is removed so
// later draws renormalise; keys listed in locked are never removed. When the
// pool runs out of drawable mass the keys drawn so far are returned.
//
// Precondition: src must be non-nil.
// Postcondition: without replacement and no locked keys, the result holds
// distinct keys and len(result) == min(count, drawable entries).
func (p *Pool[K, V]) Draw(src dice.Source, count int, replacement bool, locked ...K) []K {
	if count <= 0 || len(p.entries) == 0 {
		return nil
	}

	keys := make([]K, 0, len(p.entries))
	weights := make([]float64, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Weight > 0 {
			keys = append(keys, e.Key)
			weights = append(weights, e.Weight)
		}
	}

	drawn := make([]K, 0, count)
	for i := 0; i < count && len(keys) > 0; i++ {
		idx := pick(src, weights)
		key := keys[idx]
		drawn = append(drawn, key)
		if replacement || slices.Contains(locked, key) {
			continue
		}
		keys = slices.Delete(keys, idx, idx+1)
		weights = slices.Delete(weights, idx, idx+1)
	}
	return drawn
}

// DrawOne draws a single key. ok is false when the pool has nothing drawable.
func (p *Pool[K, V]) DrawOne(src dice.Source) (key K, ok bool) {
	drawn := p.Draw(src, 1, true)
	if len(drawn) == 0 {
		return key, false
	}
	return drawn[0], true
}

// pick returns the index whose cumulative weight band contains a uniform roll.
//
// Precondition: len(weights) > 0 and every weight > 0.
func pick(src dice.Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	roll := src.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if roll < acc {
			return i
		}
	}
	// Floating point rounding can leave roll == total.
	return len(weights) - 1
}
