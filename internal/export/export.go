// Package export writes generated cards to CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, or infers it from a file extension when name
// is empty.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch f := Format(strings.ToLower(name)); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", name)
	}
}

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter writes generated cards to a file.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes cards to the configured file.
func (e *Exporter) Export(cards []*card.Generated) (err error) {
	file, err := e.createFile()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return WriteCards(file, e.opts.Format, cards, e.opts.PrettyJSON)
}

// createFile creates the output file, handling overwrite settings.
func (e *Exporter) createFile() (*os.File, error) {
	dir := filepath.Dir(e.opts.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

// WriteCards writes cards to w in the given format.
func WriteCards(w io.Writer, format Format, cards []*card.Generated, prettyJSON bool) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		if prettyJSON {
			encoder.SetIndent("", "  ")
		}
		if cards == nil {
			cards = []*card.Generated{}
		}
		if err := encoder.Encode(cards); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, cards)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// csvHeader names the columns written by writeCSV.
var csvHeader = []string{
	"id", "type", "subtypes", "mana_cost", "cmc", "colors", "rarity", "power", "toughness", "loyalty", "text",
}

func writeCSV(w io.Writer, cards []*card.Generated) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, c := range cards {
		if err := writer.Write(csvRow(c)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(c *card.Generated) []string {
	loyalty := ""
	if c.Loyalty != nil {
		loyalty = strconv.Itoa(*c.Loyalty)
	}
	return []string{
		c.ID,
		string(c.Category),
		strings.Join(c.Subtypes, " "),
		c.ManaCost,
		strconv.Itoa(c.CMC),
		strings.Join(c.Colors, ""),
		c.Rarity,
		c.Power,
		c.Toughness,
		loyalty,
		c.Text,
	}
}

// GenerateFilename generates a default filename for a card type and format.
func GenerateFilename(cardType string, format Format) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(cardType), timestamp, format)
}
