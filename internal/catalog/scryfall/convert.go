package scryfall

import (
	"math"
	"strconv"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

// ToCard converts a catalog card into the generator's card record. Multi-faced
// cards contribute their front face. Missing numeric fields are left unset.
func ToCard(sc Card) card.Card {
	typeLine, text := sc.TypeLine, sc.OracleText
	manaCost, colors := sc.ManaCost, sc.Colors
	power, toughness, loyalty := sc.Power, sc.Toughness, sc.Loyalty

	if len(sc.CardFaces) > 0 {
		front := sc.CardFaces[0]
		if text == "" {
			text = front.OracleText
		}
		if front.TypeLine != "" {
			typeLine = front.TypeLine
		}
		if manaCost == "" {
			manaCost = front.ManaCost
		}
		if len(colors) == 0 {
			colors = front.Colors
		}
		if power == "" && toughness == "" {
			power, toughness = front.Power, front.Toughness
		}
		if loyalty == "" {
			loyalty = front.Loyalty
		}
	}

	name := sc.Name
	if len(sc.CardFaces) > 0 && sc.CardFaces[0].Name != "" {
		name = sc.CardFaces[0].Name
	}

	supers, types, subtypes := card.ParseTypeLine(typeLine)
	c := card.Card{
		Name:       name,
		Text:       text,
		Category:   card.CategoryOf(types),
		Supertypes: supers,
		Types:      types,
		Subtypes:   subtypes,
		Colors:     card.NormalizeColors(colors),
		ManaCost:   manaCost,
		Rarity:     sc.Rarity,
		Power:      power,
		Toughness:  toughness,
	}
	if sc.CMC != nil && *sc.CMC >= 0 {
		c.CMC = int(math.Floor(*sc.CMC))
		c.HasCMC = true
	}
	if n, err := strconv.Atoi(loyalty); err == nil {
		c.Loyalty = &n
	}
	return c
}

// ToCards converts a page of catalog cards.
func ToCards(cards []Card) []card.Card {
	out := make([]card.Card, 0, len(cards))
	for _, sc := range cards {
		out = append(out, ToCard(sc))
	}
	return out
}
