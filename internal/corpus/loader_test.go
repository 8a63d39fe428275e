package corpus

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/catalog/scryfall"
	"github.com/jsyiek/mtg-card-generator/internal/storage"
)

type fakeCatalog struct {
	pages [][]scryfall.Card
	err   error
	calls int
}

func (f *fakeCatalog) SearchAll(ctx context.Context, query string, fn func(page int, cards []scryfall.Card) error) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	total := 0
	for i, p := range f.pages {
		total += len(p)
		if err := fn(i+1, p); err != nil {
			return total, err
		}
	}
	return total, nil
}

func cmc(v float64) *float64 { return &v }

func testPages() [][]scryfall.Card {
	return [][]scryfall.Card{
		{
			{Name: "Llanowar Elves", TypeLine: "Creature — Elf Druid", OracleText: "{T}: Add {G}.",
				ManaCost: "{G}", CMC: cmc(1), Colors: []string{"G"}, Rarity: "common", Power: "1", Toughness: "1"},
		},
		{
			{Name: "Divination", TypeLine: "Sorcery", OracleText: "Draw two cards.",
				ManaCost: "{2}{U}", CMC: cmc(3), Colors: []string{"U"}, Rarity: "common"},
		},
	}
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestLoader(t *testing.T, cat Catalog, ttl time.Duration, c *clock) (*Loader, *storage.CardRepository) {
	t.Helper()
	db, err := storage.Open(storage.DefaultConfig(filepath.Join(t.TempDir(), "cards.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := storage.NewCardRepository(db)
	return NewLoader(cat, repo, LoaderConfig{Query: "game:paper", TTL: ttl, Now: c.Now}), repo
}

func TestLoad_FetchesThenUsesCache(t *testing.T) {
	cat := &fakeCatalog{pages: testPages()}
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader, _ := newTestLoader(t, cat, time.Hour, c)
	ctx := context.Background()

	cards, err := loader.Load(ctx, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Divination", cards[0].Name)
	assert.Equal(t, card.CategoryCreature, cards[1].Category)
	assert.Equal(t, 1, cat.calls)

	c.now = c.now.Add(30 * time.Minute)
	creatures, err := loader.Load(ctx, LoadOptions{Categories: []card.Category{card.CategoryCreature}})
	require.NoError(t, err)
	require.Len(t, creatures, 1)
	assert.Equal(t, "Llanowar Elves", creatures[0].Name)
	assert.Equal(t, 1, cat.calls, "fresh cache should not refetch")

	status, err := loader.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Fresh)
	assert.Equal(t, 2, status.LastFetch.CardCount)
}

func TestLoad_RefetchesWhenStale(t *testing.T) {
	cat := &fakeCatalog{pages: testPages()}
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader, _ := newTestLoader(t, cat, time.Hour, c)
	ctx := context.Background()

	_, err := loader.Load(ctx, LoadOptions{})
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Hour)
	_, err = loader.Load(ctx, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.calls)
}

func TestLoad_ResetClearsCache(t *testing.T) {
	cat := &fakeCatalog{pages: testPages()}
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader, repo := newTestLoader(t, cat, 0, c)
	ctx := context.Background()

	require.NoError(t, repo.SaveCards(ctx, []card.Card{{Name: "Stale Card", Category: card.CategoryLand}}))

	cards, err := loader.Load(ctx, LoadOptions{Reset: true})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, got := range cards {
		assert.NotEqual(t, "Stale Card", got.Name)
	}
	assert.Equal(t, 1, cat.calls)
}

func TestLoad_FetchError(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("catalog unavailable")}
	loader, repo := newTestLoader(t, cat, time.Hour, &clock{now: time.Now()})
	ctx := context.Background()

	_, err := loader.Load(ctx, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")

	last, err := repo.LastFetch(ctx)
	require.NoError(t, err)
	assert.Nil(t, last, "failed fetch must not be recorded")
}

func TestStatus_QueryChangeIsStale(t *testing.T) {
	cat := &fakeCatalog{pages: testPages()}
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader, repo := newTestLoader(t, cat, 0, c)
	ctx := context.Background()

	_, err := loader.Load(ctx, LoadOptions{})
	require.NoError(t, err)

	other := NewLoader(cat, repo, LoaderConfig{Query: "set:lea", Now: c.Now})
	status, err := other.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Fresh)
}

func TestLoad_QueryChangeReplacesCorpus(t *testing.T) {
	cat := &fakeCatalog{pages: testPages()}
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loader, repo := newTestLoader(t, cat, 0, c)
	ctx := context.Background()

	_, err := loader.Load(ctx, LoadOptions{})
	require.NoError(t, err)

	instants := &fakeCatalog{pages: [][]scryfall.Card{{
		{Name: "Shock", TypeLine: "Instant", OracleText: "Shock deals 2 damage to any target.",
			ManaCost: "{R}", CMC: cmc(1), Colors: []string{"R"}, Rarity: "common"},
	}}}
	other := NewLoader(instants, repo, LoaderConfig{Query: "t:instant", Now: c.Now})
	cards, err := other.Load(ctx, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Shock", cards[0].Name)
	assert.Equal(t, 1, instants.calls)

	status, err := other.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Fresh)
	assert.Equal(t, "t:instant", status.LastFetch.Query)
}
