package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

const searchPage = `{
  "object": "list",
  "total_cards": 3,
  "has_more": false,
  "data": [
    {"name": "Llanowar Elves", "type_line": "Creature — Elf Druid", "oracle_text": "{T}: Add {G}.",
     "mana_cost": "{G}", "cmc": 1, "colors": ["G"], "rarity": "common", "power": "1", "toughness": "1"},
    {"name": "Raging Goblin", "type_line": "Creature — Goblin Berserker", "oracle_text": "Haste",
     "mana_cost": "{R}", "cmc": 1, "colors": ["R"], "rarity": "common", "power": "1", "toughness": "1"},
    {"name": "Divination", "type_line": "Sorcery", "oracle_text": "Draw two cards.",
     "mana_cost": "{2}{U}", "cmc": 3, "colors": ["U"], "rarity": "common"}
  ]
}`

// setupCLI starts a fake catalog and writes a config pointing at it.
func setupCLI(t *testing.T) (configPath string, requests *atomic.Int32) {
	t.Helper()

	var n atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchPage))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	data := fmt.Sprintf(`
[catalog]
base_url = %q
request_interval = "1ms"

[cache]
db_path = %q
ttl = "1h"
`, server.URL, filepath.Join(dir, "cards.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(data), 0o644))

	return configPath, &n
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func generateJSON(t *testing.T, args ...string) []*card.Generated {
	t.Helper()

	out, err := execute(t, args...)
	require.NoError(t, err)

	var cards []*card.Generated
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	return cards
}

func TestGenerate_JSON(t *testing.T) {
	configPath, requests := setupCLI(t)

	cards := generateJSON(t, "generate", "--config", configPath,
		"-c", "Creature", "-n", "4", "--seed", "5", "--workers", "2", "--json")
	require.Len(t, cards, 4)
	for _, c := range cards {
		assert.Equal(t, card.CategoryCreature, c.Category)
		assert.Equal(t, 1, c.CMC)
		assert.Equal(t, "1", c.Power)
		assert.NotEmpty(t, c.ID)
		assert.Contains(t, []string{" { t }: add { g }.", " haste"}, c.Text)
	}

	again := generateJSON(t, "generate", "--config", configPath,
		"-c", "Creature", "-n", "4", "--seed", "5", "--workers", "2", "--json")
	for i := range cards {
		assert.Equal(t, cards[i].Text, again[i].Text)
		assert.Equal(t, cards[i].ManaCost, again[i].ManaCost)
		assert.Equal(t, cards[i].Subtypes, again[i].Subtypes)
	}
	assert.EqualValues(t, 1, requests.Load(), "second run should use the cache")
}

func TestGenerate_TextOutput(t *testing.T) {
	configPath, _ := setupCLI(t)

	out, err := execute(t, "generate", "--config", configPath, "-c", "sorcery", "--seed", "1")
	require.NoError(t, err)
	assert.Equal(t, "2U\nSorcery\n draw two cards.\ncommon\n"+separator+"\n", out)
}

func TestGenerate_Errors(t *testing.T) {
	configPath, _ := setupCLI(t)

	_, err := execute(t, "generate", "--config", configPath, "-c", "Battle")
	assert.ErrorContains(t, err, "unknown card type")

	_, err = execute(t, "generate", "--config", configPath, "-n", "0")
	assert.ErrorContains(t, err, "number must be positive")

	_, err = execute(t, "generate", "--config", configPath, "--chunk-size", "0")
	assert.Error(t, err)
}

func TestGenerate_SaveAndHistory(t *testing.T) {
	configPath, _ := setupCLI(t)

	_, err := execute(t, "generate", "--config", configPath, "-n", "2", "--seed", "3", "--save")
	require.NoError(t, err)

	out, err := execute(t, "history", "--config", configPath, "--json")
	require.NoError(t, err)

	var saved []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.Len(t, saved, 2)
	assert.Equal(t, "Creature", saved[0]["type"])
	assert.EqualValues(t, 3, saved[0]["Seed"])
}

func TestGenerate_ExportCSV(t *testing.T) {
	configPath, _ := setupCLI(t)
	output := filepath.Join(t.TempDir(), "cards.csv")

	out, err := execute(t, "generate", "--config", configPath, "-n", "3", "--seed", "9", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 cards")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))

	_, err = execute(t, "generate", "--config", configPath, "-o", output)
	assert.ErrorContains(t, err, "file already exists")

	_, err = execute(t, "generate", "--config", configPath, "-o", filepath.Join(t.TempDir(), "cards.txt"))
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestFetchAndStats(t *testing.T) {
	configPath, requests := setupCLI(t)

	out, err := execute(t, "fetch", "--config", configPath, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Fetched 3 cards")
	assert.EqualValues(t, 1, requests.Load())

	out, err = execute(t, "stats", "--config", configPath, "-c", "Creature", "-c", "Sorcery", "--json")
	require.NoError(t, err)

	var stats []struct {
		Category    string `json:"category"`
		Chunks      int    `json:"chunks"`
		Unreachable int    `json:"unreachable"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "Creature", stats[0].Category)
	assert.Positive(t, stats[0].Chunks)
	assert.Zero(t, stats[0].Unreachable)
	assert.EqualValues(t, 1, requests.Load(), "stats should use the fetched cache")
}

func TestChart(t *testing.T) {
	configPath, _ := setupCLI(t)
	output := filepath.Join(t.TempDir(), "model.html")

	out, err := execute(t, "chart", "--config", configPath, "-n", "10", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Creature: mana value")
}

func TestConfigCmd(t *testing.T) {
	configPath, _ := setupCLI(t)

	out, err := execute(t, "config", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "request_interval = '1ms'")
	assert.Contains(t, out, "chunk_size = 3")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mtg-card-generator dev\n", out)
}

func TestGenerate_DefaultsToCreature(t *testing.T) {
	configPath, _ := setupCLI(t)
	f, err := os.OpenFile(configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n[model]\ncard_types = [\"Sorcery\"]\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cards := generateJSON(t, "generate", "--config", configPath, "-n", "2", "--seed", "3", "--json")
	require.Len(t, cards, 2)
	for _, c := range cards {
		assert.Equal(t, card.CategoryCreature, c.Category)
	}

	out, err := execute(t, "stats", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sorcery")
	assert.NotContains(t, out, "Creature")
}
