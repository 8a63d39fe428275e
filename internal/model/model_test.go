package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

func intp(n int) *int { return &n }

func testCorpus() []card.Card {
	return []card.Card{
		{
			Name: "Elvish Visionary", Text: "When Elvish Visionary enters, draw a card.",
			Category: card.CategoryCreature, Types: []string{"Creature"}, Subtypes: []string{"Elf", "Shaman"},
			CMC: 2, HasCMC: true, Colors: []string{"G"}, ManaCost: "{1}{G}", Rarity: "common",
			Power: "1", Toughness: "1",
		},
		{
			Name: "Llanowar Elves", Text: "{T}: Add {G}.",
			Category: card.CategoryCreature, Types: []string{"Creature"}, Subtypes: []string{"Elf", "Druid"},
			CMC: 1, HasCMC: true, Colors: []string{"G"}, ManaCost: "{G}", Rarity: "common",
			Power: "1", Toughness: "1",
		},
		{
			Name: "Grizzly Bears", Category: card.CategoryCreature, Types: []string{"Creature"},
			Subtypes: []string{"Bear"}, CMC: 2, HasCMC: true, Colors: []string{"G"}, ManaCost: "{1}{G}",
			Power: "2", Toughness: "2",
		},
		{
			Name: "Divination", Text: "Draw two cards.",
			Category: card.CategorySorcery, Types: []string{"Sorcery"},
			CMC: 3, HasCMC: true, Colors: []string{"U"}, ManaCost: "{2}{U}", Rarity: "common",
		},
		{
			Name: "Jace Beleren", Text: "+2: Each player draws a card.\n−1: Target player draws a card.",
			Category: card.CategoryPlaneswalker, Types: []string{"Planeswalker"}, Subtypes: []string{"Jace"},
			CMC: 3, HasCMC: true, Colors: []string{"U"}, ManaCost: "{1}{U}{U}", Rarity: "rare",
			Loyalty: intp(3),
		},
		{
			Name: "Invasion of Tarkir", Text: "When Invasion of Tarkir enters, it deals damage.",
			Category: card.CategoryBattle, Types: []string{"Battle"},
		},
	}
}

func buildTestGraphs(t *testing.T) Graphs {
	t.Helper()
	graphs, err := Build(testCorpus(), DefaultBuildOptions())
	require.NoError(t, err)
	return graphs
}

func assertSumsToOne[K comparable](t *testing.T, name string, table *probability.Table[K]) {
	t.Helper()
	if table.Len() == 0 {
		return
	}
	assert.Equal(t, 0, table.Sum().Cmp(big.NewRat(1, 1)), "%s sums to %s", name, table.Sum())
}

func TestBuild_DistributionsSumToOne(t *testing.T) {
	graphs := buildTestGraphs(t)

	for cat, g := range graphs {
		assert.True(t, g.Locked(), "%s graph not locked", cat)
		if g.Len() == 0 {
			continue
		}
		assertSumsToOne(t, "openings", g.Openings())
		assertSumsToOne(t, "line counts", g.LineCounts())

		for _, c := range g.Chunks() {
			assertSumsToOne(t, c.Key().String()+" costs", c.Costs())
			assertSumsToOne(t, c.Key().String()+" colors", c.Colors())
			assertSumsToOne(t, c.Key().String()+" rarities", c.Rarities())
			assertSumsToOne(t, c.Key().String()+" successors", c.Successors())
			for _, cmc := range c.Costs().Keys() {
				assertSumsToOne(t, c.Key().String()+" pips", c.Pips(cmc))
			}
			if cs := c.Creature(); cs != nil {
				assertSumsToOne(t, "subtypes", cs.Subtypes())
				assertSumsToOne(t, "subtype counts", cs.SubtypeCounts())
			}
		}
	}
}

func TestBuild_TerminalChunksHaveNoSuccessors(t *testing.T) {
	graphs := buildTestGraphs(t)

	for _, g := range graphs {
		for _, c := range g.Chunks() {
			if c.Terminal() {
				assert.Zero(t, c.Successors().Len(), "%s", c.Key())
			} else {
				assert.NotZero(t, c.Successors().Len(), "%s", c.Key())
			}
		}
	}
}

func TestBuild_Creature(t *testing.T) {
	graphs := buildTestGraphs(t)
	g := graphs[card.CategoryCreature]
	require.NotNil(t, g)

	open, ok := g.Chunk(KeyOf([]string{"when", "~", "enters"}, false))
	require.True(t, ok, "self-reference should replace the card name")
	assert.Equal(t, int64(1), open.Observations())

	w, ok := g.Openings().Get(open.Key())
	require.True(t, ok)
	assert.Equal(t, 0, w.Cmp(big.NewRat(1, 2)))

	// Grizzly Bears has no text and never reaches the line-count table.
	assert.Equal(t, []int{1}, g.LineCounts().Keys())

	cs := open.Creature()
	require.NotNil(t, cs)
	elf, ok := cs.Subtypes().Get("Elf")
	require.True(t, ok)
	assert.Equal(t, 0, elf.Cmp(big.NewRat(1, 2)))
	two, ok := cs.SubtypeCounts().Get(2)
	require.True(t, ok)
	assert.Equal(t, 0, two.Cmp(big.NewRat(1, 1)))

	pt, ok := cs.PowerToughness(2).Get(PowerToughness{Power: "1", Toughness: "1"})
	require.True(t, ok)
	assert.Equal(t, 0, pt.Cmp(big.NewRat(1, 1)))
	assert.Nil(t, cs.PowerToughness(5))

	pips, ok := open.Pips(2).Get(1)
	require.True(t, ok)
	assert.Equal(t, 0, pips.Cmp(big.NewRat(1, 1)))
	assert.Nil(t, open.Planeswalker())
}

func TestBuild_Planeswalker(t *testing.T) {
	graphs := buildTestGraphs(t)
	g := graphs[card.CategoryPlaneswalker]
	require.NotNil(t, g)

	assert.Equal(t, []int{2}, g.LineCounts().Keys())
	for _, c := range g.Chunks() {
		ps := c.Planeswalker()
		require.NotNil(t, ps)
		three, ok := ps.Loyalty().Get(3)
		require.True(t, ok)
		assert.Equal(t, 0, three.Cmp(big.NewRat(1, 1)))
		assert.Nil(t, c.Creature())
	}
}

func TestBuild_SkipsUnsupportedCategories(t *testing.T) {
	graphs := buildTestGraphs(t)

	_, ok := graphs[card.CategoryBattle]
	assert.False(t, ok)
	_, ok = graphs[card.CategoryUnknown]
	assert.False(t, ok)

	lands := graphs[card.CategoryLand]
	require.NotNil(t, lands)
	assert.Zero(t, lands.Len())
	assert.Zero(t, lands.Openings().Len())
}

func TestBuild_RestrictedCategories(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.Categories = []card.Category{card.CategorySorcery, card.CategoryBattle}

	graphs, err := Build(testCorpus(), opts)
	require.NoError(t, err)

	assert.Len(t, graphs, 1)
	assert.Equal(t, 2, graphs[card.CategorySorcery].Len())
}

func TestBuild_InvalidChunkSize(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.ChunkSize = 0

	_, err := Build(testCorpus(), opts)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestBuild_Deterministic(t *testing.T) {
	a := buildTestGraphs(t)
	b := buildTestGraphs(t)

	require.Equal(t, len(a), len(b))
	for cat, ga := range a {
		gb, ok := b[cat]
		require.True(t, ok, "missing %s graph", cat)
		assertGraphsIdentical(t, ga, gb)
	}

	first := a[card.CategoryCreature].Chunks()[0]
	require.NotNil(t, first.Creature())
	assert.Positive(t, first.Pips(first.Costs().Keys()[0]).Len())
	assert.Positive(t, first.Creature().PowerToughness(first.Costs().Keys()[0]).Len())
	assert.Positive(t, a[card.CategoryPlaneswalker].Chunks()[0].Planeswalker().Loyalty().Len())
}

func assertGraphsIdentical(t *testing.T, a, b *ChunkGraph) {
	t.Helper()
	ca, cb := a.Chunks(), b.Chunks()
	require.Equal(t, len(ca), len(cb))
	for i := range ca {
		require.Equal(t, ca[i].Key(), cb[i].Key())
		assert.Equal(t, ca[i].Observations(), cb[i].Observations())
		assertTablesIdentical(t, ca[i].Successors(), cb[i].Successors())
		assertTablesIdentical(t, ca[i].Costs(), cb[i].Costs())
		assertTablesIdentical(t, ca[i].Colors(), cb[i].Colors())
		assertTablesIdentical(t, ca[i].Rarities(), cb[i].Rarities())
		for _, cmc := range ca[i].Costs().Keys() {
			assertTablesIdentical(t, ca[i].Pips(cmc), cb[i].Pips(cmc))
		}

		if cra := ca[i].Creature(); cra != nil {
			crb := cb[i].Creature()
			require.NotNil(t, crb)
			assertTablesIdentical(t, cra.Subtypes(), crb.Subtypes())
			assertTablesIdentical(t, cra.SubtypeCounts(), crb.SubtypeCounts())
			for _, cmc := range ca[i].Costs().Keys() {
				assertTablesIdentical(t, cra.PowerToughness(cmc), crb.PowerToughness(cmc))
			}
		} else {
			assert.Nil(t, cb[i].Creature())
		}

		if pwa := ca[i].Planeswalker(); pwa != nil {
			pwb := cb[i].Planeswalker()
			require.NotNil(t, pwb)
			assertTablesIdentical(t, pwa.Loyalty(), pwb.Loyalty())
		} else {
			assert.Nil(t, cb[i].Planeswalker())
		}
	}
	assertTablesIdentical(t, a.Openings(), b.Openings())
	assertTablesIdentical(t, a.LineCounts(), b.LineCounts())
}

func assertTablesIdentical[K comparable](t *testing.T, a, b *probability.Table[K]) {
	t.Helper()
	require.Equal(t, a.Keys(), b.Keys())
	a.Each(func(k K, w *big.Rat) {
		other, _ := b.Get(k)
		assert.Equal(t, 0, w.Cmp(other), "weight for %v", k)
	})
}

func TestTextChunk_RegisterAfterLock(t *testing.T) {
	c := NewTextChunk([]string{"draw", "a", "card"}, true, card.CategoryInstant)
	require.NoError(t, c.RegisterCard(card.Card{Name: "Opt", CMC: 1, HasCMC: true}))
	require.NoError(t, c.Finalize())

	err := c.RegisterCard(card.Card{Name: "Opt"})
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, c.RegisterSuccessor(KeyOf([]string{"x"}, true)), ErrLocked)
	assert.ErrorIs(t, c.Finalize(), ErrLocked)
	assert.Equal(t, int64(1), c.Observations())
}

func TestTextChunk_TerminalRejectsSuccessor(t *testing.T) {
	c := NewTextChunk([]string{"."}, true, card.CategoryInstant)
	assert.Error(t, c.RegisterSuccessor(KeyOf([]string{"x"}, true)))
}

func TestTextChunk_Dangling(t *testing.T) {
	c := NewTextChunk([]string{"draw"}, false, card.CategoryInstant)
	require.NoError(t, c.RegisterCard(card.Card{Name: "Opt"}))

	assert.ErrorIs(t, c.Finalize(), ErrDanglingChunk)
}

func TestTextChunk_MissingOptionalFields(t *testing.T) {
	c := NewTextChunk([]string{"flying"}, true, card.CategoryCreature)
	require.NoError(t, c.RegisterCard(card.Card{Name: "Nameless"}))
	require.NoError(t, c.Finalize())

	assert.Nil(t, c.Costs())
	assert.Nil(t, c.Rarities())
	assert.Equal(t, []string{card.ColorlessKey}, c.Colors().Keys())
	assert.Nil(t, c.Creature().PowerToughness(0))
}

func TestChunkGraph_LockedGraph(t *testing.T) {
	g := NewChunkGraph(card.CategoryInstant)
	c, err := g.ChunkFor([]string{"draw", "."}, true)
	require.NoError(t, err)
	require.NoError(t, g.RegisterOpening(c.Key()))
	require.NoError(t, g.RegisterLineCount(1))
	require.NoError(t, g.Finalize())

	_, err = g.ChunkFor([]string{"new"}, true)
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, g.RegisterOpening(c.Key()), ErrLocked)
	assert.ErrorIs(t, g.RegisterLineCount(2), ErrLocked)

	same, err := g.ChunkFor([]string{"draw", "."}, true)
	require.NoError(t, err)
	assert.Same(t, c, same)
}

func TestChunkGraph_Unreachable(t *testing.T) {
	g := NewChunkGraph(card.CategoryInstant)
	a, _ := g.ChunkFor([]string{"a"}, false)
	b, _ := g.ChunkFor([]string{"b"}, false)
	c, _ := g.ChunkFor([]string{"c"}, false)
	end, _ := g.ChunkFor([]string{"end"}, true)

	require.NoError(t, a.RegisterSuccessor(b.Key()))
	require.NoError(t, b.RegisterSuccessor(a.Key()))
	require.NoError(t, c.RegisterSuccessor(c.Key()))
	require.NoError(t, c.RegisterSuccessor(end.Key()))

	assert.Equal(t, []ChunkKey{a.Key(), b.Key()}, g.Unreachable())

	stats := g.Stats()
	assert.Equal(t, 4, stats.Chunks)
	assert.Equal(t, 1, stats.Terminal)
	assert.Equal(t, 4, stats.Edges)
	assert.Equal(t, 2, stats.Unreachable)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		card string
		want []string
	}{
		{"empty", "", "X", nil},
		{"self reference", "Shock deals 2 damage.", "Shock", []string{"~ deals 2 damage."}},
		{
			"bullet continuation",
			"Choose one —\n• Draw a card.\n• Gain 3 life.\nFlashback {2}",
			"Moment",
			[]string{"Choose one — • Draw a card. • Gain 3 life.", "Flashback {2}"},
		},
		{"blank lines", "Flying\n\nHaste", "Bird", []string{"Flying", "Haste"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.text, tt.card))
		})
	}
}

func TestChunkKey(t *testing.T) {
	k := KeyOf([]string{"draw", "a", "card"}, true)
	assert.Equal(t, []string{"draw", "a", "card"}, k.Tokens())
	assert.Equal(t, "[draw a card]$", k.String())
	assert.NotEqual(t, k, KeyOf([]string{"draw", "a", "card"}, false))
	assert.Nil(t, ChunkKey{}.Tokens())
}
