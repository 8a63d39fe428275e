// Package render turns chunk layouts back into display text.
package render

import (
	"strings"

	"github.com/jsyiek/mtg-card-generator/internal/model"
	"github.com/jsyiek/mtg-card-generator/internal/tokenize"
)

// punctuation attaches to the previous token without a space.
var punctuation = map[string]bool{
	".": true, ",": true, "?": true, "!": true, ";": true, ":": true,
	"'": true, "`": true, `"`: true, "n't": true, "'s": true,
}

// IsPunctuation reports whether a token attaches to the token before it.
func IsPunctuation(token string) bool { return punctuation[token] }

// Tokens renders one line of tokens. Every token gets a single leading space
// except punctuation and a self-reference directly following another.
func Tokens(tokens []string) string {
	var b strings.Builder
	prev := ""
	for _, tok := range tokens {
		switch {
		case punctuation[tok]:
		case tok == tokenize.SelfReference && prev == tokenize.SelfReference:
		default:
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		prev = tok
	}
	return b.String()
}

// Line renders the chunks of one line.
func Line(chunks []*model.TextChunk) string {
	var tokens []string
	for _, c := range chunks {
		tokens = append(tokens, c.Tokens()...)
	}
	return Tokens(tokens)
}

// Render renders a layout, one line per chunk sequence.
func Render(layout [][]*model.TextChunk) string {
	lines := make([]string, len(layout))
	for i, chunks := range layout {
		lines[i] = Line(chunks)
	}
	return strings.Join(lines, "\n")
}
