package generator

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

// ColorlessSymbol fills coloured pips on a card with no colours.
const ColorlessSymbol = "C"

// VariableSymbol prefixes the cost of a card whose text uses {X}.
const VariableSymbol = "X"

// ReconstructCostString rebuilds a mana cost in plain symbols ("1UW") from the
// number of coloured pips, the converted cost and the colours. Pips are dealt one
// per colour per pass while at least one pass remains; the leftover pips go to
// distinct colours picked with rng. Coloured symbols are sorted. When pips is a
// multiple of the colour count no random draw is made.
func ReconstructCostString(pips, cmc int, colors []string, variable bool, rng *rand.Rand) string {
	if pips < 0 {
		pips = 0
	}

	var symbols []string
	switch {
	case len(colors) == 0:
		for i := 0; i < pips; i++ {
			symbols = append(symbols, ColorlessSymbol)
		}
	default:
		left := pips
		for left >= len(colors) {
			symbols = append(symbols, colors...)
			left -= len(colors)
		}
		if left > 0 {
			for _, i := range rng.Perm(len(colors))[:left] {
				symbols = append(symbols, colors[i])
			}
		}
	}
	sort.Strings(symbols)

	var b strings.Builder
	if variable {
		b.WriteString(VariableSymbol)
	}
	if generic := cmc - pips; generic > 0 {
		b.WriteString(strconv.Itoa(generic))
	}
	b.WriteString(strings.Join(symbols, ""))
	return b.String()
}

// variableTokens is how the tokenizer splits "{X}".
var variableTokens = []string{"{", "x", "}"}

// hasVariableCost reports whether the layout's text contains {X}.
func hasVariableCost(layout Layout) bool {
	var tokens []string
	for _, line := range layout {
		tokens = tokens[:0]
		for _, c := range line {
			tokens = append(tokens, c.Tokens()...)
		}
		for i := 0; i+len(variableTokens) <= len(tokens); i++ {
			if tokens[i] == variableTokens[0] && tokens[i+1] == variableTokens[1] && tokens[i+2] == variableTokens[2] {
				return true
			}
		}
	}
	return false
}
