package generator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/render"
)

// GenerateCard lays out one card and derives its attributes. Creature and
// planeswalker attributes are derived only for those categories.
func (g *Generator) GenerateCard(ctx context.Context) (*card.Generated, error) {
	out, err := g.generate(ctx)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Generated card",
		"id", out.card.ID,
		"cardType", out.card.Category,
		"lines", out.lines,
		"chunks", out.steps)
	return out.card, nil
}

func (g *Generator) cardFromLayout(layout Layout) (*card.Generated, error) {
	cmc, err := DeriveCMC(layout, g.rng)
	if err != nil {
		return nil, err
	}
	colors, err := DeriveColors(layout, g.rng)
	if err != nil {
		return nil, err
	}
	pips, err := DerivePipIntensity(layout, cmc, g.rng)
	if err != nil {
		return nil, err
	}
	rarity, err := DeriveRarity(layout, g.rng)
	if err != nil {
		return nil, err
	}

	out := &card.Generated{
		ID:       uuid.NewString(),
		Category: g.graph.Category(),
		CMC:      cmc,
		Colors:   colors,
		ManaCost: ReconstructCostString(pips, cmc, colors, hasVariableCost(layout), g.rng),
		Rarity:   rarity,
		Text:     render.Render(layout),
	}

	switch out.Category {
	case card.CategoryCreature:
		if out.Subtypes, err = DeriveSubtypes(layout, g.rng); err != nil {
			return nil, err
		}
		pt, err := DerivePowerToughness(layout, cmc, g.rng)
		if err != nil {
			return nil, err
		}
		out.Power, out.Toughness = pt.Power, pt.Toughness
	case card.CategoryPlaneswalker:
		loyalty, err := DeriveLoyalty(layout, g.rng)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", out.Category, err)
		}
		out.Loyalty = &loyalty
	}
	return out, nil
}
