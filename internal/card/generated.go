package card

import (
	"fmt"
	"strings"
)

// Generated is a card produced by the generator. It mirrors Card closely enough to be
// displayed or fed back into a model.
type Generated struct {
	ID       string   `json:"id"`
	Category Category `json:"type"`
	CMC      int      `json:"cmc"`
	Colors   []string `json:"colors"`
	ManaCost string   `json:"mana_cost"`
	Rarity   string   `json:"rarity"`
	Text     string   `json:"text"`

	Subtypes  []string `json:"subtypes,omitempty"`
	Power     string   `json:"power,omitempty"`
	Toughness string   `json:"toughness,omitempty"`
	Loyalty   *int     `json:"loyalty,omitempty"`
}

// TypeLine renders the category and subtypes, e.g. "Creature — Elf Druid".
func (g *Generated) TypeLine() string {
	if len(g.Subtypes) == 0 {
		return string(g.Category)
	}
	return fmt.Sprintf("%s — %s", g.Category, strings.Join(g.Subtypes, " "))
}

// String renders the card in the plain-text layout used by the CLI.
func (g *Generated) String() string {
	var b strings.Builder
	b.WriteString(g.ManaCost)
	b.WriteString("\n")
	b.WriteString(g.TypeLine())
	b.WriteString("\n")
	b.WriteString(g.Text)
	b.WriteString("\n")
	b.WriteString(g.Rarity)
	b.WriteString("\n")
	switch {
	case g.Category == CategoryCreature && g.Power != "":
		fmt.Fprintf(&b, "%s/%s\n", g.Power, g.Toughness)
	case g.Category == CategoryPlaneswalker && g.Loyalty != nil:
		fmt.Fprintf(&b, "%d\n", *g.Loyalty)
	}
	return b.String()
}

// AsCard converts the generated card back into a Card so it can be ingested.
func (g *Generated) AsCard(name string) Card {
	c := Card{
		Name:      name,
		Text:      g.Text,
		Category:  g.Category,
		Types:     []string{string(g.Category)},
		Subtypes:  append([]string(nil), g.Subtypes...),
		CMC:       g.CMC,
		HasCMC:    true,
		Colors:    append([]string(nil), g.Colors...),
		ManaCost:  g.ManaCost,
		Rarity:    g.Rarity,
		Power:     g.Power,
		Toughness: g.Toughness,
		Loyalty:   g.Loyalty,
	}
	return c
}
