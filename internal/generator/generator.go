// Package generator walks a finalized chunk graph to lay out a card's text and
// derives the card's attributes from the chunks it used.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/model"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

// DefaultMaxWalkSteps bounds the successor walk of one line.
const DefaultMaxWalkSteps = 10000

var (
	// ErrDegenerateModel is returned when a line walk exceeds the step bound, which
	// happens when the walk enters chunks that cannot reach a terminal chunk.
	ErrDegenerateModel = errors.New("chunk walk did not reach a terminal chunk")

	// ErrUnknownCategory is returned when no graph exists for the requested category.
	ErrUnknownCategory = errors.New("no chunk graph for card type")

	// ErrNotFinalized is returned when generating from a graph that is still open.
	ErrNotFinalized = errors.New("chunk graph is not finalized")
)

// Layout is the chunk sequence of every line of one generated card.
type Layout [][]*model.TextChunk

// Chunks flattens the layout in line order.
func (l Layout) Chunks() []*model.TextChunk {
	var out []*model.TextChunk
	for _, line := range l {
		out = append(out, line...)
	}
	return out
}

// Steps is the total number of chunks in the layout.
func (l Layout) Steps() int {
	n := 0
	for _, line := range l {
		n += len(line)
	}
	return n
}

// Options configures a Generator.
type Options struct {
	// Rand is the random source. Defaults to a PCG seeded from the clock. A Generator
	// must own its source: *rand.Rand is not safe for concurrent use.
	Rand *rand.Rand
	// MaxWalkSteps bounds each line walk. Zero disables the bound.
	MaxWalkSteps int
	Logger       *slog.Logger
}

// DefaultOptions returns options with the default step bound.
func DefaultOptions() Options {
	return Options{MaxWalkSteps: DefaultMaxWalkSteps}
}

// Generator produces cards from one finalized chunk graph. It only reads the
// graph, so many generators may share one graph.
type Generator struct {
	graph    *model.ChunkGraph
	rng      *rand.Rand
	maxSteps int
	logger   *slog.Logger
}

// New creates a generator for a finalized graph.
func New(graph *model.ChunkGraph, opts Options) (*Generator, error) {
	if graph == nil {
		return nil, ErrUnknownCategory
	}
	if !graph.Locked() {
		return nil, fmt.Errorf("%s graph: %w", graph.Category(), ErrNotFinalized)
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxWalkSteps < 0 {
		opts.MaxWalkSteps = 0
	}
	return &Generator{
		graph:    graph,
		rng:      opts.Rand,
		maxSteps: opts.MaxWalkSteps,
		logger:   opts.Logger,
	}, nil
}

// Graph returns the graph the generator reads.
func (g *Generator) Graph() *model.ChunkGraph { return g.graph }

// GenerateLayout samples a line count, then for each line samples an opening chunk
// and follows successors until a terminal chunk, inclusive.
func (g *Generator) GenerateLayout() (Layout, error) {
	lines, err := probability.Sample(g.graph.LineCounts(), g.rng)
	if err != nil {
		return nil, fmt.Errorf("sample line count: %w", err)
	}

	layout := make(Layout, 0, lines)
	for i := 0; i < lines; i++ {
		line, err := g.walkLine()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		layout = append(layout, line)
	}
	return layout, nil
}

func (g *Generator) walkLine() ([]*model.TextChunk, error) {
	key, err := probability.Sample(g.graph.Openings(), g.rng)
	if err != nil {
		return nil, fmt.Errorf("sample opening chunk: %w", err)
	}
	cur, err := g.lookup(key)
	if err != nil {
		return nil, err
	}

	line := []*model.TextChunk{cur}
	for !cur.Terminal() {
		if g.maxSteps > 0 && len(line) >= g.maxSteps {
			return nil, fmt.Errorf("after %d chunks from %s: %w", len(line), line[0].Key(), ErrDegenerateModel)
		}
		key, err := probability.Sample(cur.Successors(), g.rng)
		if err != nil {
			return nil, fmt.Errorf("sample successor of %s: %w", cur.Key(), err)
		}
		if cur, err = g.lookup(key); err != nil {
			return nil, err
		}
		line = append(line, cur)
	}
	return line, nil
}

func (g *Generator) lookup(key model.ChunkKey) (*model.TextChunk, error) {
	c, ok := g.graph.Chunk(key)
	if !ok {
		return nil, fmt.Errorf("chunk %s missing from %s graph", key, g.graph.Category())
	}
	return c, nil
}

// ForCategory creates a generator for one category of a built model.
func ForCategory(graphs model.Graphs, category card.Category, opts Options) (*Generator, error) {
	g, ok := graphs[category]
	if !ok {
		return nil, fmt.Errorf("%q: %w", category, ErrUnknownCategory)
	}
	return New(g, opts)
}
