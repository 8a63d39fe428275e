package generator

import (
	"fmt"
	"math/big"
	"math/rand/v2"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/model"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

// Combine folds the distribution lookup selects from each chunk into one joint
// score table. A chunk that never saw a value scores it 1/observations; the running
// table scores a value it has not seen as 1/(product of observations so far).
func Combine[K comparable](chunks []*model.TextChunk, lookup func(*model.TextChunk) *probability.Table[K]) *probability.Table[K] {
	var acc *probability.Table[K]
	accFallback := big.NewRat(1, 1)
	for _, c := range chunks {
		obs := c.Observations()
		if obs < 1 {
			obs = 1
		}
		chunkFallback := probability.Reciprocal(obs)
		acc = probability.CombineIndependent(acc, lookup(c), accFallback, chunkFallback)
		accFallback = new(big.Rat).Mul(accFallback, chunkFallback)
	}
	return acc
}

// Derive combines the distribution selected by lookup across the layout and samples
// one value from it. lookup returns nil when a chunk has no such distribution.
func Derive[K comparable](layout Layout, lookup func(*model.TextChunk) *probability.Table[K], rng *rand.Rand) (K, error) {
	return probability.Sample(Combine(layout.Chunks(), lookup), rng)
}

// DeriveCMC samples a converted mana cost.
func DeriveCMC(layout Layout, rng *rand.Rand) (int, error) {
	cmc, err := Derive(layout, (*model.TextChunk).Costs, rng)
	if err != nil {
		return 0, fmt.Errorf("derive cmc: %w", err)
	}
	return cmc, nil
}

// DeriveColors samples a colour set. Colourless is an empty slice.
func DeriveColors(layout Layout, rng *rand.Rand) ([]string, error) {
	key, err := Derive(layout, (*model.TextChunk).Colors, rng)
	if err != nil {
		return nil, fmt.Errorf("derive colors: %w", err)
	}
	return card.SplitColorKey(key), nil
}

// DerivePipIntensity samples the number of coloured symbols for a card of the given cost.
func DerivePipIntensity(layout Layout, cmc int, rng *rand.Rand) (int, error) {
	pips, err := Derive(layout, func(c *model.TextChunk) *probability.Table[int] {
		return c.Pips(cmc)
	}, rng)
	if err != nil {
		return 0, fmt.Errorf("derive pip intensity for cmc %d: %w", cmc, err)
	}
	return pips, nil
}

// DeriveRarity samples a rarity.
func DeriveRarity(layout Layout, rng *rand.Rand) (string, error) {
	r, err := Derive(layout, (*model.TextChunk).Rarities, rng)
	if err != nil {
		return "", fmt.Errorf("derive rarity: %w", err)
	}
	return r, nil
}

// DeriveSubtypes samples how many subtypes the card has, then samples that many
// distinct subtypes.
func DeriveSubtypes(layout Layout, rng *rand.Rand) ([]string, error) {
	n, err := Derive(layout, func(c *model.TextChunk) *probability.Table[int] {
		if cs := c.Creature(); cs != nil {
			return cs.SubtypeCounts()
		}
		return nil
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("derive subtype count: %w", err)
	}

	pool := Combine(layout.Chunks(), func(c *model.TextChunk) *probability.Table[string] {
		if cs := c.Creature(); cs != nil {
			return cs.Subtypes()
		}
		return nil
	})

	var subtypes []string
	for len(subtypes) < n && pool.Len() > 0 {
		st, err := probability.Sample(pool, rng)
		if err != nil {
			break
		}
		subtypes = append(subtypes, st)
		pool = without(pool, st)
	}
	if n > 0 && len(subtypes) == 0 {
		return nil, fmt.Errorf("derive subtypes: %w", probability.ErrNoData)
	}
	return subtypes, nil
}

// DerivePowerToughness samples power and toughness for a creature of the given cost.
func DerivePowerToughness(layout Layout, cmc int, rng *rand.Rand) (model.PowerToughness, error) {
	pt, err := Derive(layout, func(c *model.TextChunk) *probability.Table[model.PowerToughness] {
		if cs := c.Creature(); cs != nil {
			return cs.PowerToughness(cmc)
		}
		return nil
	}, rng)
	if err != nil {
		return model.PowerToughness{}, fmt.Errorf("derive power/toughness for cmc %d: %w", cmc, err)
	}
	return pt, nil
}

// DeriveLoyalty samples a planeswalker's starting loyalty.
func DeriveLoyalty(layout Layout, rng *rand.Rand) (int, error) {
	l, err := Derive(layout, func(c *model.TextChunk) *probability.Table[int] {
		if ps := c.Planeswalker(); ps != nil {
			return ps.Loyalty()
		}
		return nil
	}, rng)
	if err != nil {
		return 0, fmt.Errorf("derive loyalty: %w", err)
	}
	return l, nil
}

func without[K comparable](t *probability.Table[K], drop K) *probability.Table[K] {
	out := probability.NewTable[K]()
	t.Each(func(k K, w *big.Rat) {
		if k != drop {
			out.Set(k, w)
		}
	})
	return out
}
