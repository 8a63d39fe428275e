package model

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

// ChunkGraph is the chunk model of one card category. Chunks live in an arena keyed
// by ChunkKey and successor edges refer to keys, so self-loops and cycles are
// plain map entries.
type ChunkGraph struct {
	category card.Category
	state    chunkState

	chunks *orderedmap.OrderedMap[ChunkKey, *TextChunk]

	openingCounts   *probability.Counts[ChunkKey]
	lineCountCounts *probability.Counts[int]

	openings   *probability.Table[ChunkKey]
	lineCounts *probability.Table[int]
}

// NewChunkGraph creates an empty, open graph for a category.
func NewChunkGraph(category card.Category) *ChunkGraph {
	return &ChunkGraph{
		category:        category,
		chunks:          orderedmap.New[ChunkKey, *TextChunk](),
		openingCounts:   probability.NewCounts[ChunkKey](),
		lineCountCounts: probability.NewCounts[int](),
	}
}

func (g *ChunkGraph) Category() card.Category { return g.category }
func (g *ChunkGraph) Locked() bool            { return g.state == stateLocked }

// Len returns the number of chunks in the graph.
func (g *ChunkGraph) Len() int { return g.chunks.Len() }

// Chunk looks up a chunk by key.
func (g *ChunkGraph) Chunk(key ChunkKey) (*TextChunk, bool) {
	return g.chunks.Get(key)
}

// Chunks returns every chunk in the order it was first seen.
func (g *ChunkGraph) Chunks() []*TextChunk {
	out := make([]*TextChunk, 0, g.chunks.Len())
	for pair := g.chunks.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// ChunkFor returns the chunk for the tokens, creating it on first sight.
func (g *ChunkGraph) ChunkFor(tokens []string, terminal bool) (*TextChunk, error) {
	key := KeyOf(tokens, terminal)
	if c, ok := g.chunks.Get(key); ok {
		return c, nil
	}
	if g.state != stateOpen {
		return nil, fmt.Errorf("add chunk %s to %s graph: %w", key, g.category, ErrLocked)
	}
	c := NewTextChunk(tokens, terminal, g.category)
	g.chunks.Set(key, c)
	return c, nil
}

// RegisterOpening counts a chunk as the first chunk of a line.
func (g *ChunkGraph) RegisterOpening(key ChunkKey) error {
	if g.state != stateOpen {
		return fmt.Errorf("register opening %s: %w", key, ErrLocked)
	}
	g.openingCounts.Add(key)
	return nil
}

// RegisterLineCount counts a card with n lines of text.
func (g *ChunkGraph) RegisterLineCount(n int) error {
	if g.state != stateOpen {
		return fmt.Errorf("register line count %d: %w", n, ErrLocked)
	}
	g.lineCountCounts.Add(n)
	return nil
}

// Openings returns the opening-chunk distribution. Nil before Finalize or when the
// graph is empty.
func (g *ChunkGraph) Openings() *probability.Table[ChunkKey] { return g.openings }

// LineCounts returns the line-count distribution. Nil before Finalize or when the
// graph is empty.
func (g *ChunkGraph) LineCounts() *probability.Table[int] { return g.lineCounts }

// Finalize finalizes every chunk, normalizes the opening and line-count tables and
// locks the graph. An empty graph finalizes to empty tables.
func (g *ChunkGraph) Finalize() error {
	if g.state != stateOpen {
		return fmt.Errorf("finalize %s graph: %w", g.category, ErrLocked)
	}
	for pair := g.chunks.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.Finalize(); err != nil {
			return fmt.Errorf("finalize %s graph: %w", g.category, err)
		}
	}
	g.openings = normalizeOrNil(g.openingCounts)
	g.lineCounts = normalizeOrNil(g.lineCountCounts)
	g.openingCounts, g.lineCountCounts = nil, nil
	g.state = stateLocked
	return nil
}

// Unreachable returns the non-terminal chunks from which no terminal chunk can be
// reached. A walk that enters one of them never ends.
func (g *ChunkGraph) Unreachable() []ChunkKey {
	// predecessors[k] lists the chunks with an edge into k.
	predecessors := make(map[ChunkKey][]ChunkKey, g.chunks.Len())
	var queue []ChunkKey
	for pair := g.chunks.Oldest(); pair != nil; pair = pair.Next() {
		c := pair.Value
		if c.Terminal() {
			queue = append(queue, c.Key())
		}
		for _, next := range c.SuccessorKeys() {
			predecessors[next] = append(predecessors[next], c.Key())
		}
	}

	ends := make(map[ChunkKey]bool, g.chunks.Len())
	for _, k := range queue {
		ends[k] = true
	}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, p := range predecessors[k] {
			if !ends[p] {
				ends[p] = true
				queue = append(queue, p)
			}
		}
	}

	var out []ChunkKey
	for pair := g.chunks.Oldest(); pair != nil; pair = pair.Next() {
		if !ends[pair.Key] {
			out = append(out, pair.Key)
		}
	}
	return out
}

// GraphStats summarizes a graph for reporting.
type GraphStats struct {
	Category    card.Category `json:"category"`
	Chunks      int           `json:"chunks"`
	Terminal    int           `json:"terminal"`
	Openings    int           `json:"openings"`
	Edges       int           `json:"edges"`
	LineCounts  []int         `json:"lineCounts"`
	Unreachable int           `json:"unreachable"`
}

// Stats returns a summary of the graph.
func (g *ChunkGraph) Stats() GraphStats {
	s := GraphStats{Category: g.category, Chunks: g.chunks.Len()}
	for pair := g.chunks.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Terminal() {
			s.Terminal++
		}
		s.Edges += len(pair.Value.SuccessorKeys())
	}
	if g.state == stateLocked {
		s.Openings = g.openings.Len()
		s.LineCounts = g.lineCounts.Keys()
	} else {
		s.Openings = g.openingCounts.Len()
		s.LineCounts = g.lineCountCounts.Keys()
	}
	s.Unreachable = len(g.Unreachable())
	return s
}
