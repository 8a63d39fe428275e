// Package metrics keeps in-process sample distributions for generation runs.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultMaxSamples bounds a histogram created with a non-positive size.
const DefaultMaxSamples = 10000

// Histogram keeps a bounded window of float samples and reports order statistics.
// It is safe for concurrent use.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64
	maxSize int
}

// NewHistogram creates a histogram keeping at most maxSize samples. When full, the
// oldest fifth is dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = DefaultMaxSamples
	}
	return &Histogram{
		samples: make([]float64, 0, min(maxSize, 1024)),
		maxSize: maxSize,
	}
}

// Observe adds a sample.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, v)
	if len(h.samples) > h.maxSize {
		h.samples = h.samples[max(h.maxSize/5, 1):]
	}
}

// ObserveDuration adds a duration sample in milliseconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(float64(d.Microseconds()) / 1000.0)
}

// Count returns the number of samples kept.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Mean returns the sample mean, or 0 when empty.
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.samples {
		sum += v
	}
	return sum / float64(len(h.samples))
}

// Percentile returns the p-th percentile (0-100), interpolating between samples.
func (h *Histogram) Percentile(p float64) float64 {
	sorted := h.sorted()
	return percentile(sorted, p)
}

// Min returns the smallest sample, or 0 when empty.
func (h *Histogram) Min() float64 {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return 0
	}
	return sorted[0]
}

// Max returns the largest sample, or 0 when empty.
func (h *Histogram) Max() float64 {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

// Reset drops every sample.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

// Summary is a snapshot of a histogram.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
}

// Summary takes a snapshot of the histogram.
func (h *Histogram) Summary() Summary {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return Summary{}
	}
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return Summary{
		Count: len(sorted),
		Mean:  sum / float64(len(sorted)),
		Min:   sorted[0],
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		Max:   sorted[len(sorted)-1],
	}
}

func (h *Histogram) sorted() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]float64, len(h.samples))
	copy(out, h.samples)
	sort.Float64s(out)
	return out
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}
