// Package card defines the card records consumed and produced by the generator.
package card

import (
	"strings"
)

// Category is the primary card type a card is filed under.
type Category string

const (
	CategoryCreature     Category = "Creature"
	CategoryPlaneswalker Category = "Planeswalker"
	CategoryInstant      Category = "Instant"
	CategorySorcery      Category = "Sorcery"
	CategoryEnchantment  Category = "Enchantment"
	CategoryArtifact     Category = "Artifact"
	CategoryLand         Category = "Land"
	CategoryBattle       Category = "Battle"
	CategoryUnknown      Category = ""
)

// Categories lists the categories the generator knows how to model, in display order.
var Categories = []Category{
	CategoryCreature,
	CategoryEnchantment,
	CategoryInstant,
	CategorySorcery,
	CategoryPlaneswalker,
	CategoryArtifact,
	CategoryLand,
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(name)) {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// Card is a single card from the catalog, reduced to the fields the model uses.
type Card struct {
	Name     string   `json:"name"`
	Text     string   `json:"text"`
	Category Category `json:"category"`

	Supertypes []string `json:"supertypes,omitempty"`
	Types      []string `json:"types,omitempty"`
	Subtypes   []string `json:"subtypes,omitempty"`

	// CMC is the converted mana cost. HasCMC is false when the catalog had no value.
	CMC    int  `json:"cmc"`
	HasCMC bool `json:"has_cmc"`

	// Colors holds colour symbols (W, U, B, R, G) in canonical order.
	Colors   []string `json:"colors,omitempty"`
	ManaCost string   `json:"mana_cost,omitempty"`
	Rarity   string   `json:"rarity,omitempty"`

	// Creature fields
	Power     string `json:"power,omitempty"`
	Toughness string `json:"toughness,omitempty"`

	// Planeswalker fields
	Loyalty *int `json:"loyalty,omitempty"`
}

// HasPowerToughness reports whether both power and toughness are present.
func (c *Card) HasPowerToughness() bool {
	return c.Power != "" && c.Toughness != ""
}

// PipIntensity counts the mana symbols in a cost string that carry a colour or
// colourless C. Hybrid, Phyrexian and twobrid symbols such as {W/U}, {G/P} and
// {2/W} count once. Letters outside braces are single symbols.
func PipIntensity(manaCost string) int {
	n := 0
	for rest := manaCost; rest != ""; {
		var symbol string
		if rest[0] == '{' {
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				end = len(rest) - 1
			}
			symbol, rest = rest[1:end+1], rest[end+1:]
		} else {
			symbol, rest = rest[:1], rest[1:]
		}
		if strings.ContainsAny(symbol, "WUBRGC") {
			n++
		}
	}
	return n
}
