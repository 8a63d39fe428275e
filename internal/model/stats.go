package model

import (
	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

// categoryStats is implemented by the per-category distribution sets a chunk
// carries on top of the shared ones.
type categoryStats interface {
	register(c card.Card)
	finalize()
}

// chunkKinds lists the categories that have a chunk kind. A nil constructor means the
// category only uses the shared distributions.
var chunkKinds = map[card.Category]func() categoryStats{
	card.CategoryCreature:     func() categoryStats { return newCreatureStats() },
	card.CategoryPlaneswalker: func() categoryStats { return newPlaneswalkerStats() },
	card.CategoryInstant:      nil,
	card.CategorySorcery:      nil,
	card.CategoryEnchantment:  nil,
	card.CategoryArtifact:     nil,
	card.CategoryLand:         nil,
}

// Supported reports whether the category has a registered chunk kind.
func Supported(c card.Category) bool {
	_, ok := chunkKinds[c]
	return ok
}

func newCategoryStats(c card.Category) categoryStats {
	if ctor := chunkKinds[c]; ctor != nil {
		return ctor()
	}
	return nil
}

// PowerToughness is a creature's printed power and toughness.
type PowerToughness struct {
	Power     string
	Toughness string
}

// CreatureStats holds the creature-only distributions of a chunk.
type CreatureStats struct {
	subtypeCounts *probability.Counts[string]
	arityCounts   *probability.Counts[int]
	ptCounts      map[int]*probability.Counts[PowerToughness]

	subtypes *probability.Table[string]
	arity    *probability.Table[int]
	pt       map[int]*probability.Table[PowerToughness]
}

func newCreatureStats() *CreatureStats {
	return &CreatureStats{
		subtypeCounts: probability.NewCounts[string](),
		arityCounts:   probability.NewCounts[int](),
		ptCounts:      make(map[int]*probability.Counts[PowerToughness]),
	}
}

func (s *CreatureStats) register(c card.Card) {
	for _, st := range c.Subtypes {
		s.subtypeCounts.Add(st)
	}
	s.arityCounts.Add(len(c.Subtypes))

	if c.HasCMC && c.HasPowerToughness() {
		counts, ok := s.ptCounts[c.CMC]
		if !ok {
			counts = probability.NewCounts[PowerToughness]()
			s.ptCounts[c.CMC] = counts
		}
		counts.Add(PowerToughness{Power: c.Power, Toughness: c.Toughness})
	}
}

func (s *CreatureStats) finalize() {
	s.subtypes = normalizeOrNil(s.subtypeCounts)
	s.arity = normalizeOrNil(s.arityCounts)
	s.pt = normalizeNested(s.ptCounts)
	s.subtypeCounts, s.arityCounts, s.ptCounts = nil, nil, nil
}

// Subtypes returns the subtype distribution.
func (s *CreatureStats) Subtypes() *probability.Table[string] { return s.subtypes }

// SubtypeCounts returns the distribution of how many subtypes a card had.
func (s *CreatureStats) SubtypeCounts() *probability.Table[int] { return s.arity }

// PowerToughness returns the power/toughness distribution for cards of the given cost.
func (s *CreatureStats) PowerToughness(cmc int) *probability.Table[PowerToughness] {
	return s.pt[cmc]
}

// PlaneswalkerStats holds the planeswalker-only distributions of a chunk.
type PlaneswalkerStats struct {
	loyaltyCounts *probability.Counts[int]
	loyalty       *probability.Table[int]
}

func newPlaneswalkerStats() *PlaneswalkerStats {
	return &PlaneswalkerStats{loyaltyCounts: probability.NewCounts[int]()}
}

func (s *PlaneswalkerStats) register(c card.Card) {
	if c.Loyalty != nil {
		s.loyaltyCounts.Add(*c.Loyalty)
	}
}

func (s *PlaneswalkerStats) finalize() {
	s.loyalty = normalizeOrNil(s.loyaltyCounts)
	s.loyaltyCounts = nil
}

// Loyalty returns the starting loyalty distribution.
func (s *PlaneswalkerStats) Loyalty() *probability.Table[int] { return s.loyalty }
