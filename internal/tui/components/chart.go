package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled to the series peak.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders one vertical bar per value with the value above it and
// its label below. Columns share width evenly; height is the bar area in
// rows. Narrow or short areas fall back to a Sparkline.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	n := len(values)
	if n == 0 {
		return ""
	}
	colW := width / n
	if colW < 3 || height < 2 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	barW := colW - 2
	if barW > 8 {
		barW = 8
	}
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	center := func(s string, style lipgloss.Style) string {
		return style.Render(lipgloss.PlaceHorizontal(colW, lipgloss.Center, s))
	}

	// Bar heights in eighths of a row.
	eighths := make([]int, n)
	for i, v := range values {
		eighths[i] = int(v / peak * float64(height*8))
		if v > 0 && eighths[i] == 0 {
			eighths[i] = 1
		}
	}

	var b strings.Builder
	for _, v := range values {
		b.WriteString(center(formatChartLabel(v), numStyle))
	}
	b.WriteString("\n")

	for row := height; row >= 1; row-- {
		floor := (row - 1) * 8
		for i := range values {
			var cell string
			switch e := eighths[i] - floor; {
			case e >= 8:
				cell = strings.Repeat("█", barW)
			case e > 0:
				cell = strings.Repeat(string(sparkBlocks[e-1]), barW)
			default:
				cell = strings.Repeat(" ", barW)
			}
			b.WriteString(center(cell, barStyle))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat("─", colW*n)))
	if len(labels) == n {
		b.WriteString("\n")
		for _, l := range labels {
			b.WriteString(center(Truncate(l, colW-1), axisStyle))
		}
	}
	return b.String()
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
