package card

import "strings"

var supertypes = map[string]bool{
	"Basic":     true,
	"Legendary": true,
	"Snow":      true,
	"World":     true,
	"Ongoing":   true,
	"Elite":     true,
	"Host":      true,
}

// ParseTypeLine splits a type line such as "Legendary Creature — Elf Druid" into
// supertypes, card types and subtypes.
func ParseTypeLine(line string) (supers, types, subtypes []string) {
	head, tail := line, ""
	for _, sep := range []string{"—", " - "} {
		if i := strings.Index(line, sep); i >= 0 {
			head, tail = line[:i], line[i+len(sep):]
			break
		}
	}

	for _, word := range strings.Fields(head) {
		if supertypes[word] {
			supers = append(supers, word)
			continue
		}
		types = append(types, word)
	}
	if fields := strings.Fields(tail); len(fields) > 0 {
		subtypes = fields
	}
	return supers, types, subtypes
}

// CategoryOf returns the category for a list of card types: the first type listed.
// Types with no model (Tribal, Kindred, Conspiracy, ...) map to CategoryUnknown.
func CategoryOf(types []string) Category {
	if len(types) == 0 {
		return CategoryUnknown
	}
	switch c := Category(types[0]); c {
	case CategoryCreature, CategoryPlaneswalker, CategoryInstant, CategorySorcery,
		CategoryEnchantment, CategoryArtifact, CategoryLand, CategoryBattle:
		return c
	}
	return CategoryUnknown
}
