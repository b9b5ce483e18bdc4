// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/guregu/null/v5"

	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/styles"
)

// HighlightColor draws the series that won the analysis.
var HighlightColor = asciigraph.Red

// seriesPalette colors the remaining series in order.
var seriesPalette = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.White,
}

// ChartOptions controls how a dashboard chart is drawn.
type ChartOptions struct {
	Width   int
	Height  int
	Caption string
	// Selected is the ID of the only series to draw. Empty draws all.
	Selected string
}

// LegendColor converts a chart color to the matching terminal color.
func LegendColor(c asciigraph.AnsiColor) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(int(c)))
}

// OrderSeries returns the highlighted series first, then the rest in their
// original order.
func OrderSeries(series []models.ChartSeries) []models.ChartSeries {
	ordered := make([]models.ChartSeries, 0, len(series))
	for _, s := range series {
		if s.Highlight {
			ordered = append(ordered, s)
		}
	}
	for _, s := range series {
		if !s.Highlight {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// SeriesColors assigns a chart color to each series in OrderSeries order.
func SeriesColors(ordered []models.ChartSeries) []asciigraph.AnsiColor {
	colors := make([]asciigraph.AnsiColor, len(ordered))
	next := 0
	for i, s := range ordered {
		if s.Highlight {
			colors[i] = HighlightColor
			continue
		}
		colors[i] = seriesPalette[next%len(seriesPalette)]
		next++
	}
	return colors
}

// RenderChart draws a dashboard chart with its legend. Absent samples leave
// gaps in the line.
func RenderChart(c models.Chart, opts ChartOptions) string {
	ordered := OrderSeries(c.Series)
	colors := SeriesColors(ordered)

	var (
		data      [][]float64
		plotColor []asciigraph.AnsiColor
		legend    []LegendItem
	)
	for i, s := range ordered {
		if opts.Selected != "" && s.ID != opts.Selected {
			continue
		}
		values, ok := plottable(s.Values)
		label := s.Name
		if s.Highlight {
			label += " *"
		}
		if !ok {
			label += " (no data)"
		}
		legend = append(legend, LegendItem{Label: label, Color: LegendColor(colors[i])})
		if ok {
			data = append(data, values)
			plotColor = append(plotColor, colors[i])
		}
	}

	if len(data) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.HelpStyle.Render("No data available"),
			RenderLegend(legend),
		)
	}

	width, height := chartSize(opts.Width, opts.Height)

	// Highlighted series is plotted last so it stays on top.
	reverse(data)
	reverse(plotColor)

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(opts.Caption),
		asciigraph.SeriesColors(plotColor...),
	)

	return lipgloss.JoinVertical(lipgloss.Left, graph, "", RenderLegend(legend))
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width, height = chartSize(width, height)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func chartSize(width, height int) (int, int) {
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}
	return width, height
}

// plottable converts samples to floats with NaN gaps. It reports false when
// no sample is present.
func plottable(values []null.Float) ([]float64, bool) {
	out := make([]float64, len(values))
	valid := 0
	for i, v := range values {
		if v.Valid {
			out[i] = v.Float64
			valid++
		} else {
			out[i] = math.NaN()
		}
	}
	if valid == 0 {
		return nil, false
	}
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out, true
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	barWidth := width - maxLabelLen - 10 // Leave room for label and value
	if barWidth < 10 {
		barWidth = 10
	}

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		paddedLabel := fmt.Sprintf("%*s", maxLabelLen, label)

		barLen := int((v / maxVal) * float64(barWidth))
		if barLen < 0 {
			barLen = 0
		}

		bar := strings.Repeat("█", barLen)
		valueStr := fmt.Sprintf(" %.0f", v)

		lines = append(lines, paddedLabel+" │"+bar+valueStr)
	}

	return strings.Join(lines, "\n")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		idx := int(float64(i) * step)
		normalized := int((values[idx] / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
