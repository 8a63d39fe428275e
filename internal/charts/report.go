package charts

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/model"
	"github.com/jsyiek/mtg-card-generator/internal/probability"
)

// TableSeries converts an integer-keyed distribution into a series in ascending key
// order.
func TableSeries(name string, t *probability.Table[int]) SeriesData {
	s := SeriesData{Name: name}
	keys := t.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		w, _ := t.Get(k)
		f, _ := w.Float64()
		s.Points = append(s.Points, DataPoint{Label: strconv.Itoa(k), Value: f})
	}
	return s
}

// FrequencySeries converts observed values into their relative frequencies in
// ascending value order.
func FrequencySeries(name string, values []int) SeriesData {
	s := SeriesData{Name: name}
	if len(values) == 0 {
		return s
	}

	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		s.Points = append(s.Points, DataPoint{
			Label: strconv.Itoa(k),
			Value: float64(counts[k]) / float64(len(values)),
		})
	}
	return s
}

// Report compares a category's corpus, model and generated cards.
type Report struct {
	Graph     *model.ChunkGraph
	Corpus    []card.Card
	Generated []*card.Generated
}

// Charts builds the line count and mana value charts of the report.
func (r Report) Charts(config ChartConfig) ([]components.Charter, error) {
	category := r.Graph.Category()

	lineConfig := config
	lineConfig.Title = fmt.Sprintf("%s: lines of text", category)
	lineConfig.XAxisLabel = "lines"
	lineConfig.YAxisLabel = "share"
	lines, err := NewBarChart([]SeriesData{
		TableSeries("Model", r.Graph.LineCounts()),
		FrequencySeries("Generated", generatedLines(r.Generated)),
	}, lineConfig)
	if err != nil {
		return nil, err
	}

	cmcConfig := config
	cmcConfig.Title = fmt.Sprintf("%s: mana value", category)
	cmcConfig.XAxisLabel = "cmc"
	cmcConfig.YAxisLabel = "share"
	cmc, err := NewLineChart([]SeriesData{
		FrequencySeries("Corpus", corpusCMC(r.Corpus, category)),
		FrequencySeries("Generated", generatedCMC(r.Generated)),
	}, cmcConfig)
	if err != nil {
		return nil, err
	}

	return []components.Charter{lines, cmc}, nil
}

// RenderReports writes the charts of every report to one page.
func RenderReports(w io.Writer, reports []Report, config ChartConfig) error {
	var all []components.Charter
	for _, r := range reports {
		c, err := r.Charts(config)
		if err != nil {
			return fmt.Errorf("%s charts: %w", r.Graph.Category(), err)
		}
		all = append(all, c...)
	}
	return RenderPage(w, "Chunk model distributions", all...)
}

func generatedLines(cards []*card.Generated) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		if c.Text == "" {
			out = append(out, 0)
			continue
		}
		out = append(out, strings.Count(c.Text, "\n")+1)
	}
	return out
}

func generatedCMC(cards []*card.Generated) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.CMC)
	}
	return out
}

func corpusCMC(cards []card.Card, category card.Category) []int {
	var out []int
	for _, c := range cards {
		if c.Category == category && c.HasCMC {
			out = append(out, c.CMC)
		}
	}
	return out
}
