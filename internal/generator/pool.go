package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/metrics"
	"github.com/jsyiek/mtg-card-generator/internal/model"
)

// PoolOptions configures a Pool.
type PoolOptions struct {
	// Workers is the number of concurrent generators. Defaults to GOMAXPROCS.
	Workers int
	// Seed selects the random streams. Worker i draws from PCG(Seed, i), so a run
	// with the same seed and worker count produces the same cards.
	Seed         uint64
	MaxWalkSteps int
	// Metrics, if set, receives per-card timings.
	Metrics *metrics.Generation
	Logger  *slog.Logger
}

// Pool generates many cards from one graph concurrently.
type Pool struct {
	graph *model.ChunkGraph
	opts  PoolOptions
}

// NewPool creates a pool over a finalized graph.
func NewPool(graph *model.ChunkGraph, opts PoolOptions) (*Pool, error) {
	if graph == nil {
		return nil, ErrUnknownCategory
	}
	if !graph.Locked() {
		return nil, fmt.Errorf("%s graph: %w", graph.Category(), ErrNotFinalized)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pool{graph: graph, opts: opts}, nil
}

// Generate produces n cards. Card i is generated by worker i mod Workers, and the
// result keeps that order. The first error cancels the remaining work.
func (p *Pool) Generate(ctx context.Context, n int) ([]*card.Generated, error) {
	if n <= 0 {
		return nil, nil
	}
	workers := min(p.opts.Workers, n)
	out := make([]*card.Generated, n)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		gen, err := New(p.graph, Options{
			Rand:         rand.New(rand.NewPCG(p.opts.Seed, uint64(w))),
			MaxWalkSteps: p.opts.MaxWalkSteps,
			Logger:       p.opts.Logger,
		})
		if err != nil {
			return nil, err
		}

		g.Go(func() error {
			for i := w; i < n; i += workers {
				start := time.Now()
				c, err := gen.generate(gctx)
				if err != nil {
					return fmt.Errorf("card %d: %w", i+1, err)
				}
				p.opts.Metrics.ObserveCard(c.lines, c.steps, time.Since(start))
				out[i] = c.card
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.opts.Logger.Debug("Generated cards",
		"cardType", p.graph.Category(),
		"count", n,
		"workers", workers)
	return out, nil
}

type generated struct {
	card  *card.Generated
	lines int
	steps int
}

func (g *Generator) generate(ctx context.Context) (generated, error) {
	if err := ctx.Err(); err != nil {
		return generated{}, err
	}
	layout, err := g.GenerateLayout()
	if err != nil {
		return generated{}, err
	}
	c, err := g.cardFromLayout(layout)
	if err != nil {
		return generated{}, err
	}
	return generated{card: c, lines: len(layout), steps: layout.Steps()}, nil
}
