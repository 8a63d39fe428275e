package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/model"
)

func chunks(groups ...[]string) []*model.TextChunk {
	out := make([]*model.TextChunk, len(groups))
	for i, g := range groups {
		out[i] = model.NewTextChunk(g, i == len(groups)-1, card.CategoryInstant)
	}
	return out
}

func TestLine(t *testing.T) {
	line := chunks([]string{"cast"}, []string{","}, []string{"draw"}, []string{"a"}, []string{"card"}, []string{"."})
	assert.Equal(t, " cast, draw a card.", Line(line))
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"empty", nil, ""},
		{"contraction", []string{"it", "does", "n't", "die"}, " it doesn't die"},
		{"possessive", []string{"~", "'s", "power"}, " ~'s power"},
		{"repeated self reference", []string{"~", "~", "attacks"}, " ~~ attacks"},
		{"symbols keep spaces", []string{"{", "t", "}", ":", "add", "{", "g", "}", "."}, " { t }: add { g }."},
		{"quote", []string{"\"", "hello", "\""}, "\" hello\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.tokens))
		})
	}
}

func TestRender(t *testing.T) {
	layout := [][]*model.TextChunk{
		chunks([]string{"flying"}),
		chunks([]string{"when", "~", "dies"}, []string{",", "draw", "a"}, []string{"card", "."}),
	}
	assert.Equal(t, " flying\n when ~ dies, draw a card.", Render(layout))
	assert.Equal(t, "", Render(nil))
}

func TestIsPunctuation(t *testing.T) {
	assert.True(t, IsPunctuation("n't"))
	assert.False(t, IsPunctuation("~"))
}
