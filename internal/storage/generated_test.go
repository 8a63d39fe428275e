package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

func TestGeneratedRepository(t *testing.T) {
	repo := NewGeneratedRepository(openTestDB(t))
	ctx := context.Background()
	four := 4

	cards := []*card.Generated{
		{
			ID: "a", Category: card.CategoryCreature, CMC: 2, Colors: []string{"G"}, ManaCost: "1G",
			Rarity: "common", Text: " flying", Subtypes: []string{"Elf"}, Power: "2", Toughness: "1",
		},
		{ID: "b", Category: card.CategoryPlaneswalker, CMC: 4, Colors: []string{"U"}, ManaCost: "2UU", Loyalty: &four},
	}
	require.NoError(t, repo.Save(ctx, 3, 42, cards))

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	require.NotNil(t, got[0].Loyalty)
	assert.Equal(t, 4, *got[0].Loyalty)
	assert.Equal(t, uint64(42), got[0].Seed)
	assert.Equal(t, 3, got[0].ChunkSize)

	assert.Equal(t, *cards[0], got[1].Generated)
	assert.False(t, got[1].CreatedAt.IsZero())

	one, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
