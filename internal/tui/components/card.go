// Package components provides reusable TUI widgets for the crowdscope dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

// CampaignCardHeight is the rendered line count of CampaignCard and SkeletonCard.
const CampaignCardHeight = 7

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Metric is one entry of a MetricCardRow.
type Metric struct {
	Label, Value, Delta string
}

func cardStyle(outerWidth int, border lipgloss.Color) lipgloss.Style {
	t := theme.Active
	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(contentWidth).
		Padding(0, 1)
}

// MetricCard renders a small metric card with label, value, and delta.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	deltaStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle(outerWidth, t.Border).Render(content)
}

// MetricCardRow renders a row of metric cards whose widths sum to totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	rendered := make([]string, len(metrics))
	for i, m := range metrics {
		rendered[i] = MetricCard(m, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body

	return cardStyle(outerWidth, t.Border).Render(content)
}

// CampaignCard renders one campaign as a fixed-height grid card. A campaign
// whose funding reads have not settled renders as a SkeletonCard.
func CampaignCard(c model.Campaign, outerWidth int, selected bool) string {
	if !c.Settled() {
		return SkeletonCard(outerWidth, selected)
	}
	t := theme.Active
	inner := CardInnerWidth(outerWidth)

	border := t.Border
	if selected {
		border = t.BorderAccent
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	staleStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	name := Truncate(c.DisplayName(), inner)
	desc := Truncate(c.DisplayDescription(), inner)
	amounts := amountStyle.Render(funding.FormatAmount(c.Funding.Balance)) +
		labelStyle.Render(" raised of ") +
		amountStyle.Render(funding.FormatAmount(c.Funding.Goal))

	badge := StatusBadge(funding.Classify(c.Funding))
	if c.Stale {
		badge += labelStyle.Render("  ") + staleStyle.Render("stale")
	}

	lines := []string{
		nameStyle.Render(name),
		descStyle.Render(desc),
		FundingBar(c.Funding, inner),
		amounts,
		badge + labelStyle.Render("  by "+cli.ShortAddress(c.Owner)),
	}
	return cardStyle(outerWidth, border).Render(strings.Join(lines, "\n"))
}

// SkeletonCard renders a placeholder card of the same size as CampaignCard.
func SkeletonCard(outerWidth int, selected bool) string {
	t := theme.Active
	inner := CardInnerWidth(outerWidth)

	border := t.Border
	if selected {
		border = t.BorderAccent
	}

	block := lipgloss.NewStyle().Foreground(t.SurfaceBright).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bar := func(frac float64) string {
		n := int(float64(inner) * frac)
		if n < 1 {
			n = 1
		}
		return block.Render(strings.Repeat("▒", n))
	}

	lines := []string{
		bar(0.6),
		bar(0.9),
		bar(1),
		bar(0.4),
		dim.Render("loading…"),
	}
	return cardStyle(outerWidth, border).Render(strings.Join(lines, "\n"))
}

// StatusBadge renders the Funded/Active/Unknown marker in theme colors.
func StatusBadge(s model.CampaignStatus) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.StatusColor(s)).Background(t.Surface)
	switch s {
	case model.StatusFunded:
		return style.Render("● Funded")
	case model.StatusActive:
		return style.Render("◐ Active")
	default:
		return style.Render("○ Unknown")
	}
}

// CardRow joins pre-rendered cards horizontally. Shorter cards are padded
// with background-filled lines so the row has no unstyled gaps.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	t := theme.Active

	maxH := 0
	for _, c := range cards {
		if h := lipgloss.Height(c); h > maxH {
			maxH = h
		}
	}

	fill := lipgloss.NewStyle().Background(t.Background)
	padded := make([]string, len(cards))
	for i, c := range cards {
		if h := lipgloss.Height(c); h < maxH {
			blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
			c += strings.Repeat("\n"+blank, maxH-h)
		}
		padded[i] = c
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, padded...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4 // 2 border + 2 padding
	if w < 10 {
		w = 10
	}
	return w
}

// Truncate shortens s to at most limit display columns, ending in "…".
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
