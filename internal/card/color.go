package card

import (
	"sort"
	"strings"
)

// ColorlessKey is the colour key used for cards with no colours.
const ColorlessKey = "colorless"

var colorOrder = map[string]int{"W": 0, "U": 1, "B": 2, "R": 3, "G": 4}

var colorNames = map[string]string{
	"white": "W",
	"blue":  "U",
	"black": "B",
	"red":   "R",
	"green": "G",
}

// NormalizeColors maps colour names or symbols to symbols, drops duplicates and
// unknown values, and sorts them into WUBRG order.
func NormalizeColors(colors []string) []string {
	seen := make(map[string]bool, len(colors))
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		sym := strings.ToUpper(strings.TrimSpace(c))
		if full, ok := colorNames[strings.ToLower(strings.TrimSpace(c))]; ok {
			sym = full
		}
		if _, ok := colorOrder[sym]; !ok || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	sort.SliceStable(out, func(i, j int) bool { return colorOrder[out[i]] < colorOrder[out[j]] })
	return out
}

// ColorKey returns the distribution key for a colour set.
func ColorKey(colors []string) string {
	norm := NormalizeColors(colors)
	if len(norm) == 0 {
		return ColorlessKey
	}
	return strings.Join(norm, " ")
}

// SplitColorKey is the inverse of ColorKey.
func SplitColorKey(key string) []string {
	if key == ColorlessKey || strings.TrimSpace(key) == "" {
		return nil
	}
	return strings.Fields(key)
}
