package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

func testCards() []*card.Generated {
	three := 3
	return []*card.Generated{
		{ID: "a", Category: card.CategoryCreature, CMC: 2, Colors: []string{"G"}, ManaCost: "1G",
			Rarity: "common", Text: " flying\n haste", Subtypes: []string{"Elf", "Druid"}, Power: "2", Toughness: "1"},
		{ID: "b", Category: card.CategoryPlaneswalker, CMC: 3, Colors: []string{"U", "W"}, ManaCost: "1UW",
			Rarity: "mythic", Text: " +1: draw a card.", Loyalty: &three},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV", "")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("", "out/cards.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("", "cards.txt")
	assert.Error(t, err)
}

func TestWriteCards_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCards(&buf, FormatCSV, testCards(), false))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"a", "Creature", "Elf Druid", "1G", "2", "G", "common", "2", "1", "", " flying\n haste"}, records[1])
	assert.Equal(t, "UW", records[2][5])
	assert.Equal(t, "3", records[2][9])
}

func TestWriteCards_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCards(&buf, FormatJSON, testCards(), true))

	var decoded []*card.Generated
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testCards(), decoded)

	buf.Reset()
	require.NoError(t, WriteCards(&buf, FormatJSON, nil, false))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCards_UnsupportedFormat(t *testing.T) {
	assert.Error(t, WriteCards(&bytes.Buffer{}, Format("xml"), testCards(), false))
}

func TestExporter_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cards.csv")

	require.NoError(t, NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(testCards()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,type,"))

	err = NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(testCards())
	assert.ErrorContains(t, err, "file already exists")

	require.NoError(t, NewExporter(Options{Format: FormatJSON, FilePath: path, Overwrite: true}).Export(testCards()))
}

func TestGenerateFilename(t *testing.T) {
	name := GenerateFilename("Creature", FormatCSV)
	assert.True(t, strings.HasPrefix(name, "creature_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}
