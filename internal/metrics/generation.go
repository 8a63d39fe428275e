package metrics

import "time"

// Generation collects per-card timings and walk lengths of a generation run.
type Generation struct {
	Durations *Histogram
	Steps     *Histogram
	Lines     *Histogram
}

// NewGeneration creates an empty collector.
func NewGeneration() *Generation {
	return &Generation{
		Durations: NewHistogram(0),
		Steps:     NewHistogram(0),
		Lines:     NewHistogram(0),
	}
}

// ObserveCard records one generated card. A nil collector ignores the call.
func (g *Generation) ObserveCard(lines, steps int, elapsed time.Duration) {
	if g == nil {
		return
	}
	g.Durations.ObserveDuration(elapsed)
	g.Steps.Observe(float64(steps))
	g.Lines.Observe(float64(lines))
}

// GenerationSummary is a snapshot of a Generation collector.
type GenerationSummary struct {
	DurationMS Summary `json:"durationMs"`
	Steps      Summary `json:"steps"`
	Lines      Summary `json:"lines"`
}

// Summary takes a snapshot of every histogram.
func (g *Generation) Summary() GenerationSummary {
	return GenerationSummary{
		DurationMS: g.Durations.Summary(),
		Steps:      g.Steps.Summary(),
		Lines:      g.Lines.Summary(),
	}
}
