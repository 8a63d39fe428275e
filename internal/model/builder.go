package model

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/tokenize"
)

// DefaultChunkSize is the number of tokens per chunk when none is configured.
const DefaultChunkSize = 3

// Graphs holds one finalized chunk graph per category.
type Graphs map[card.Category]*ChunkGraph

// BuildOptions configures a Builder.
type BuildOptions struct {
	// ChunkSize is the number of tokens per chunk. Must be positive.
	ChunkSize int
	// Tokenizer splits a line into tokens. Defaults to tokenize.Words.
	Tokenizer tokenize.Func
	// Categories restricts the graphs built. Empty means every supported category.
	Categories []card.Category
	Logger     *slog.Logger
}

// DefaultBuildOptions returns options with the default chunk size and tokenizer.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		ChunkSize: DefaultChunkSize,
		Tokenizer: tokenize.Words,
	}
}

// Builder ingests cards into per-category chunk graphs. It is not safe for
// concurrent use.
type Builder struct {
	opts   BuildOptions
	graphs Graphs
	logger *slog.Logger

	added   int
	skipped int
}

// NewBuilder creates a builder.
func NewBuilder(opts BuildOptions) (*Builder, error) {
	if opts.ChunkSize < 1 {
		return nil, fmt.Errorf("chunk size %d: %w", opts.ChunkSize, ErrInvalidChunkSize)
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenize.Words
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cats := opts.Categories
	if len(cats) == 0 {
		cats = card.Categories
	}
	graphs := make(Graphs, len(cats))
	for _, c := range cats {
		if !Supported(c) {
			continue
		}
		graphs[c] = NewChunkGraph(c)
	}

	return &Builder{opts: opts, graphs: graphs, logger: opts.Logger}, nil
}

// Add ingests one card. Cards of a category without a graph, or without any text,
// are skipped.
func (b *Builder) Add(c card.Card) error {
	g, ok := b.graphs[c.Category]
	if !ok {
		b.skipped++
		return nil
	}

	var lines [][][]string
	for _, line := range SplitLines(c.Text, c.Name) {
		chunks := tokenize.Chunk(b.opts.Tokenizer(line), b.opts.ChunkSize)
		if len(chunks) > 0 {
			lines = append(lines, chunks)
		}
	}
	if len(lines) == 0 {
		b.skipped++
		return nil
	}

	if err := g.RegisterLineCount(len(lines)); err != nil {
		return err
	}
	for _, chunks := range lines {
		if err := b.addLine(g, c, chunks); err != nil {
			return fmt.Errorf("add card %q: %w", c.Name, err)
		}
	}
	b.added++
	return nil
}

func (b *Builder) addLine(g *ChunkGraph, c card.Card, chunks [][]string) error {
	var prev *TextChunk
	for i, tokens := range chunks {
		chunk, err := g.ChunkFor(tokens, i == len(chunks)-1)
		if err != nil {
			return err
		}
		if err := chunk.RegisterCard(c); err != nil {
			return err
		}
		if prev == nil {
			err = g.RegisterOpening(chunk.Key())
		} else {
			err = prev.RegisterSuccessor(chunk.Key())
		}
		if err != nil {
			return err
		}
		prev = chunk
	}
	return nil
}

// Finalize finalizes every graph and returns them. The builder must not be used
// afterwards.
func (b *Builder) Finalize() (Graphs, error) {
	for cat, g := range b.graphs {
		if err := g.Finalize(); err != nil {
			return nil, err
		}
		b.logger.Debug("Finalized chunk graph",
			"cardType", cat,
			"chunks", g.Len(),
			"openings", g.Openings().Len())
	}
	b.logger.Info("Built chunk model",
		"cards", b.added,
		"skipped", b.skipped,
		"chunkSize", b.opts.ChunkSize,
		"graphs", len(b.graphs))
	return b.graphs, nil
}

// Build ingests every card and finalizes the graphs.
func Build(cards []card.Card, opts BuildOptions) (Graphs, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		if err := b.Add(c); err != nil {
			return nil, err
		}
	}
	return b.Finalize()
}

var continuationMarkers = []string{"•", "-", "—"}

// SplitLines replaces the card's own name with the self-reference token, splits
// the text into lines and merges bullet continuation lines into the line before.
func SplitLines(text, name string) []string {
	if text == "" {
		return nil
	}
	if name != "" {
		text = strings.ReplaceAll(text, name, tokenize.SelfReference)
	}

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(lines) > 0 && isContinuation(line) {
			lines[len(lines)-1] += " " + line
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isContinuation(line string) bool {
	for _, m := range continuationMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}
