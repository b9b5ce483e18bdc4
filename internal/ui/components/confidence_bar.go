package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/ui/styles"
)

const (
	lowConfidenceHex  = "#51cf66"
	highConfidenceHex = "#ff6b6b"
)

// ConfidenceBar renders a verdict confidence in [0,1] as a progress bar.
type ConfidenceBar struct {
	progress progress.Model
}

// NewConfidenceBar creates a confidence bar going from green to red.
func NewConfidenceBar() ConfidenceBar {
	p := progress.New(
		progress.WithScaledGradient(lowConfidenceHex, highConfidenceHex),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return ConfidenceBar{progress: p}
}

// View renders the bar followed by the percentage.
func (c ConfidenceBar) View(confidence float64, width int) string {
	barWidth := max(width-8, 5)
	c.progress.Width = barWidth

	confidence = min(max(confidence, 0), 1)
	bar := c.progress.ViewAs(confidence)

	percentStr := styles.GetConfidenceStyle(confidence).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", confidence*100))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
// percent is in [0,100].
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = min(max(filled, 0), width)

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(lowConfidenceHex, highConfidenceHex, t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
