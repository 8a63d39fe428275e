// Package tokenize turns lines of rules text into lowercase word tokens and groups
// tokens into fixed-size chunks.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Func tokenizes one line of text. Implementations must be total and deterministic.
type Func func(line string) []string

// SelfReference is the token that stands in for a card's own name.
const SelfReference = "~"

var quoteReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// Words is the default tokenizer. Words keep internal apostrophes, signs and
// slashes ("+1/+1", "-2:"), every other symbol becomes its own token, and the
// clitics "n't" and "'s" are split off the word they end.
func Words(line string) []string {
	s := norm.NFKC.String(strings.TrimSpace(line))
	s = quoteReplacer.Replace(s)
	// Casers carry state, so one is built per call to keep Words safe for concurrent use.
	s = cases.Lower(language.Und).String(s)

	runes := []rune(s)
	tokens := make([]string, 0, len(runes)/4)
	word := make([]rune, 0, 16)

	flush := func() {
		if len(word) == 0 {
			return
		}
		tokens = append(tokens, splitClitics(string(word))...)
		word = word[:0]
	}

	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '~':
			flush()
			tokens = append(tokens, SelfReference)
		case r == '\'':
			// An apostrophe followed by a letter belongs to the word it introduces
			// ("don't", "~'s"); otherwise it is a quote mark.
			if i+1 < len(runes) && unicode.IsLetter(runes[i+1]) {
				word = append(word, r)
				continue
			}
			flush()
			tokens = append(tokens, "'")
		case isWordRune(r):
			word = append(word, r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
		return true
	}
	switch r {
	case '+', '-', '−', '/', '*':
		return true
	}
	return false
}

func splitClitics(w string) []string {
	switch {
	case len(w) > 3 && strings.HasSuffix(w, "n't"):
		return []string{w[:len(w)-3], "n't"}
	case w == "'s":
		return []string{w}
	case len(w) > 2 && strings.HasSuffix(w, "'s"):
		return []string{w[:len(w)-2], "'s"}
	}
	return []string{w}
}

// Chunk partitions tokens into consecutive groups of size n. The last group may be
// shorter. n must be positive.
func Chunk(tokens []string, n int) [][]string {
	if n < 1 || len(tokens) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(tokens)+n-1)/n)
	for i := 0; i < len(tokens); i += n {
		end := min(i+n, len(tokens))
		chunks = append(chunks, tokens[i:end:end])
	}
	return chunks
}
