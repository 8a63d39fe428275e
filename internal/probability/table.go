package probability

import (
	"errors"
	"math/big"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrEmptyTable is returned when normalizing a table whose counts sum to zero.
var ErrEmptyTable = errors.New("cannot normalize an empty count table")

// Table maps keys to exact non-negative weights, in insertion order. After
// Normalize the weights form a probability distribution; after CombineIndependent
// they are unnormalized joint scores. A nil *Table is an empty table.
type Table[K comparable] struct {
	m *orderedmap.OrderedMap[K, *big.Rat]
}

// NewTable creates an empty table.
func NewTable[K comparable]() *Table[K] {
	return &Table[K]{m: orderedmap.New[K, *big.Rat]()}
}

// TableOf builds a table from keys and weights given as pairs. It is mostly useful
// in tests.
func TableOf[K comparable](keys []K, weights []*big.Rat) *Table[K] {
	t := NewTable[K]()
	for i, k := range keys {
		t.Set(k, weights[i])
	}
	return t
}

// Set stores a copy of w under k.
func (t *Table[K]) Set(k K, w *big.Rat) {
	if t.m == nil {
		t.m = orderedmap.New[K, *big.Rat]()
	}
	t.m.Set(k, new(big.Rat).Set(w))
}

// Get returns the weight for k.
func (t *Table[K]) Get(k K) (*big.Rat, bool) {
	if t == nil || t.m == nil {
		return nil, false
	}
	return t.m.Get(k)
}

// GetOr returns the weight for k, or fallback when k is absent.
func (t *Table[K]) GetOr(k K, fallback *big.Rat) *big.Rat {
	if v, ok := t.Get(k); ok {
		return v
	}
	return fallback
}

// Len returns the number of keys.
func (t *Table[K]) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Keys returns the keys in insertion order.
func (t *Table[K]) Keys() []K {
	if t == nil || t.m == nil {
		return nil
	}
	keys := make([]K, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order. fn must not modify w.
func (t *Table[K]) Each(fn func(k K, w *big.Rat)) {
	if t == nil || t.m == nil {
		return
	}
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Sum returns the total weight.
func (t *Table[K]) Sum() *big.Rat {
	sum := new(big.Rat)
	t.Each(func(_ K, w *big.Rat) { sum.Add(sum, w) })
	return sum
}

// Normalize divides every count by the table total.
func Normalize[K comparable](c *Counts[K]) (*Table[K], error) {
	total := c.Total()
	if total == 0 {
		return nil, ErrEmptyTable
	}
	t := NewTable[K]()
	c.Each(func(k K, n int64) {
		t.m.Set(k, big.NewRat(n, total))
	})
	return t, nil
}

// CombineIndependent multiplies two tables key by key over the union of their keys,
// using fallbackA or fallbackB for keys missing from a or b. Keys keep a's order,
// followed by keys that only b has.
func CombineIndependent[K comparable](a, b *Table[K], fallbackA, fallbackB *big.Rat) *Table[K] {
	out := NewTable[K]()
	a.Each(func(k K, w *big.Rat) {
		out.m.Set(k, new(big.Rat).Mul(w, b.GetOr(k, fallbackB)))
	})
	b.Each(func(k K, w *big.Rat) {
		if _, ok := a.Get(k); ok {
			return
		}
		out.m.Set(k, new(big.Rat).Mul(fallbackA, w))
	})
	return out
}

// Reciprocal returns 1/n as a rational. n must be positive.
func Reciprocal(n int64) *big.Rat {
	return big.NewRat(1, n)
}
