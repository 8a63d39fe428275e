// Package charts renders go-echarts HTML charts of model distributions.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	YAxisLabel string   // Y-axis label
	XAxisLabel string   // X-axis label
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Smooth     bool     // Smooth line (for line charts)
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData represents a data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: config.XAxisLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: config.YAxisLabel,
		}),
	}
}

// alignSeries returns the labels of every series in first-seen order and each
// series' values against them. A series missing a label gets zero.
func alignSeries(series []SeriesData) ([]string, [][]float64) {
	var labels []string
	index := make(map[string]int)
	for _, s := range series {
		for _, p := range s.Points {
			if _, ok := index[p.Label]; !ok {
				index[p.Label] = len(labels)
				labels = append(labels, p.Label)
			}
		}
	}

	values := make([][]float64, len(series))
	for i, s := range series {
		values[i] = make([]float64, len(labels))
		for _, p := range s.Points {
			values[i][index[p.Label]] = p.Value
		}
	}
	return labels, values
}

// NewBarChart builds a grouped bar chart with one bar per series per label.
func NewBarChart(series []SeriesData, config ChartConfig) (*charts.Bar, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no data series provided")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)

	labels, values := alignSeries(series)
	bar.SetXAxis(labels)

	for i, s := range series {
		yData := make([]opts.BarData, len(labels))
		for j, v := range values[i] {
			yData[j] = opts.BarData{Value: v}
		}

		color := config.Colors[i%len(config.Colors)]
		bar.AddSeries(s.Name, yData).
			SetSeriesOptions(
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: color,
				}),
			)
	}

	return bar, nil
}

// NewLineChart builds a multi-series line chart.
func NewLineChart(series []SeriesData, config ChartConfig) (*charts.Line, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no data series provided")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(config)...)

	labels, values := alignSeries(series)
	line.SetXAxis(labels)

	for i, s := range series {
		yData := make([]opts.LineData, len(labels))
		for j, v := range values[i] {
			yData[j] = opts.LineData{Value: v}
		}

		color := config.Colors[i%len(config.Colors)]
		line.AddSeries(s.Name, yData).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(config.Smooth),
				}),
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: color,
				}),
			)
	}

	return line, nil
}

// RenderPage writes every chart to one HTML page.
func RenderPage(w io.Writer, title string, charters ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(charters...)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and renders into it.
func WriteFile(outputPath string, render func(io.Writer) error) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return render(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
