// Package model builds the chunk graph: a weighted successor graph over short runs of
// rules-text tokens, with the card attributes seen alongside each run.
package model

import (
	"fmt"
	"strings"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

const tokenSeparator = "\x1f"

// ChunkKey identifies a chunk by its tokens and whether it ends a line.
type ChunkKey struct {
	Text     string
	Terminal bool
}

// KeyOf builds the key for a token sequence.
func KeyOf(tokens []string, terminal bool) ChunkKey {
	return ChunkKey{Text: strings.Join(tokens, tokenSeparator), Terminal: terminal}
}

// Tokens splits the key back into its tokens.
func (k ChunkKey) Tokens() []string {
	if k.Text == "" {
		return nil
	}
	return strings.Split(k.Text, tokenSeparator)
}

func (k ChunkKey) String() string {
	s := strings.ReplaceAll(k.Text, tokenSeparator, " ")
	if k.Terminal {
		return fmt.Sprintf("[%s]$", s)
	}
	return fmt.Sprintf("[%s]", s)
}

type chunkState int

const (
	stateOpen chunkState = iota
	stateLocked
)

// TextChunk is one node of the chunk graph. It counts the cards it was seen on and
// their attributes, and the chunks that followed it. Finalize turns every count
// table into an exact probability table and locks the chunk.
type TextChunk struct {
	key      ChunkKey
	tokens   []string
	category card.Category
	state    chunkState

	observations int64

	costCounts      *probability.Counts[int]
	colorCounts     *probability.Counts[string]
	pipCounts       map[int]*probability.Counts[int]
	rarityCounts    *probability.Counts[string]
	successorCounts *probability.Counts[ChunkKey]

	costs      *probability.Table[int]
	colors     *probability.Table[string]
	pips       map[int]*probability.Table[int]
	rarities   *probability.Table[string]
	successors *probability.Table[ChunkKey]

	// extra holds the category-specific distributions, if the category has any.
	extra categoryStats
}

// NewTextChunk creates an open chunk for the given category.
func NewTextChunk(tokens []string, terminal bool, category card.Category) *TextChunk {
	return &TextChunk{
		key:             KeyOf(tokens, terminal),
		tokens:          append([]string(nil), tokens...),
		category:        category,
		costCounts:      probability.NewCounts[int](),
		colorCounts:     probability.NewCounts[string](),
		pipCounts:       make(map[int]*probability.Counts[int]),
		rarityCounts:    probability.NewCounts[string](),
		successorCounts: probability.NewCounts[ChunkKey](),
		extra:           newCategoryStats(category),
	}
}

func (c *TextChunk) Key() ChunkKey           { return c.key }
func (c *TextChunk) Tokens() []string        { return c.tokens }
func (c *TextChunk) Terminal() bool          { return c.key.Terminal }
func (c *TextChunk) Category() card.Category { return c.category }
func (c *TextChunk) Locked() bool            { return c.state == stateLocked }

// Observations is the number of cards registered against this chunk.
func (c *TextChunk) Observations() int64 { return c.observations }

// RegisterCard accumulates a card's attributes. Missing optional fields are skipped.
func (c *TextChunk) RegisterCard(cd card.Card) error {
	if c.state != stateOpen {
		return fmt.Errorf("register card %q on %s: %w", cd.Name, c.key, ErrLocked)
	}

	c.observations++
	if cd.HasCMC {
		c.costCounts.Add(cd.CMC)
		pips, ok := c.pipCounts[cd.CMC]
		if !ok {
			pips = probability.NewCounts[int]()
			c.pipCounts[cd.CMC] = pips
		}
		pips.Add(card.PipIntensity(cd.ManaCost))
	}
	c.colorCounts.Add(card.ColorKey(cd.Colors))
	if cd.Rarity != "" {
		c.rarityCounts.Add(cd.Rarity)
	}
	if c.extra != nil {
		c.extra.register(cd)
	}
	return nil
}

// RegisterSuccessor records one transition from this chunk to next.
func (c *TextChunk) RegisterSuccessor(next ChunkKey) error {
	if c.state != stateOpen {
		return fmt.Errorf("register successor %s on %s: %w", next, c.key, ErrLocked)
	}
	if c.key.Terminal {
		return fmt.Errorf("register successor %s on terminal chunk %s", next, c.key)
	}
	c.successorCounts.Add(next)
	return nil
}

// Finalize normalizes every distribution and locks the chunk.
func (c *TextChunk) Finalize() error {
	if c.state != stateOpen {
		return fmt.Errorf("finalize %s: %w", c.key, ErrLocked)
	}
	if !c.key.Terminal && c.observations > 0 && c.successorCounts.Len() == 0 {
		return fmt.Errorf("finalize %s: %w", c.key, ErrDanglingChunk)
	}

	c.costs = normalizeOrNil(c.costCounts)
	c.colors = normalizeOrNil(c.colorCounts)
	c.rarities = normalizeOrNil(c.rarityCounts)
	c.successors = normalizeOrNil(c.successorCounts)
	c.pips = normalizeNested(c.pipCounts)
	if c.extra != nil {
		c.extra.finalize()
	}

	c.costCounts, c.colorCounts, c.rarityCounts, c.successorCounts = nil, nil, nil, nil
	c.pipCounts = nil
	c.state = stateLocked
	return nil
}

// Costs returns the converted mana cost distribution. Nil before Finalize.
func (c *TextChunk) Costs() *probability.Table[int] { return c.costs }

// Colors returns the colour-key distribution. Nil before Finalize.
func (c *TextChunk) Colors() *probability.Table[string] { return c.colors }

// Rarities returns the rarity distribution. Nil before Finalize.
func (c *TextChunk) Rarities() *probability.Table[string] { return c.rarities }

// Successors returns the successor distribution. Nil before Finalize and for
// terminal chunks.
func (c *TextChunk) Successors() *probability.Table[ChunkKey] { return c.successors }

// Pips returns the pip-intensity distribution for cards of the given cost, or nil
// when no card of that cost was seen.
func (c *TextChunk) Pips(cmc int) *probability.Table[int] { return c.pips[cmc] }

// Creature returns the creature distributions, or nil for other categories.
func (c *TextChunk) Creature() *CreatureStats {
	s, _ := c.extra.(*CreatureStats)
	return s
}

// Planeswalker returns the planeswalker distributions, or nil for other categories.
func (c *TextChunk) Planeswalker() *PlaneswalkerStats {
	s, _ := c.extra.(*PlaneswalkerStats)
	return s
}

// SuccessorKeys returns the keys of every chunk that followed this one, in the
// order they were first seen. It works before and after Finalize.
func (c *TextChunk) SuccessorKeys() []ChunkKey {
	if c.state == stateLocked {
		return c.successors.Keys()
	}
	return c.successorCounts.Keys()
}

func normalizeOrNil[K comparable](counts *probability.Counts[K]) *probability.Table[K] {
	t, err := probability.Normalize(counts)
	if err != nil {
		return nil
	}
	return t
}

func normalizeNested[O comparable, K comparable](nested map[O]*probability.Counts[K]) map[O]*probability.Table[K] {
	out := make(map[O]*probability.Table[K], len(nested))
	for k, counts := range nested {
		if t := normalizeOrNil(counts); t != nil {
			out[k] = t
		}
	}
	return out
}
