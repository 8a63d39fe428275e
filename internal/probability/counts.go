// Package probability holds the frequency tables the chunk model is built from and
// the exact rational arithmetic used to normalize, combine and sample them.
package probability

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Counts is an insertion-ordered frequency table. The zero value is ready to use.
type Counts[K comparable] struct {
	m     *orderedmap.OrderedMap[K, int64]
	total int64
}

// NewCounts creates an empty count table.
func NewCounts[K comparable]() *Counts[K] {
	return &Counts[K]{m: orderedmap.New[K, int64]()}
}

// Add increments the count for k by one.
func (c *Counts[K]) Add(k K) {
	c.AddN(k, 1)
}

// AddN increments the count for k by n. Non-positive n is ignored.
func (c *Counts[K]) AddN(k K, n int64) {
	if n <= 0 {
		return
	}
	if c.m == nil {
		c.m = orderedmap.New[K, int64]()
	}
	cur, _ := c.m.Get(k)
	c.m.Set(k, cur+n)
	c.total += n
}

// Get returns the count for k.
func (c *Counts[K]) Get(k K) int64 {
	if c == nil || c.m == nil {
		return 0
	}
	v, _ := c.m.Get(k)
	return v
}

// Len returns the number of distinct keys.
func (c *Counts[K]) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Total returns the sum of all counts.
func (c *Counts[K]) Total() int64 {
	if c == nil {
		return 0
	}
	return c.total
}

// Keys returns the keys in insertion order.
func (c *Counts[K]) Keys() []K {
	if c == nil || c.m == nil {
		return nil
	}
	keys := make([]K, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order.
func (c *Counts[K]) Each(fn func(k K, n int64)) {
	if c == nil || c.m == nil {
		return
	}
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
