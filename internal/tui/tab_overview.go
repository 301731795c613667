package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/tui/components"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

const topCampaigns = 5

// progressBuckets groups campaigns with both values present by percentage.
var progressBuckets = []struct {
	label    string
	min, max int
}{
	{"0-24%", 0, 24},
	{"25-49%", 25, 49},
	{"50-74%", 50, 74},
	{"75-99%", 75, 99},
	{"100%", 100, 100},
}

// progressDistribution counts complete campaigns per progress bucket.
func progressDistribution(campaigns []model.Campaign) []float64 {
	counts := make([]float64, len(progressBuckets))
	for _, c := range campaigns {
		if !c.Funding.Complete() {
			continue
		}
		pct := funding.Compute(c.Funding).Percentage
		for i, b := range progressBuckets {
			if pct >= b.min && pct <= b.max {
				counts[i]++
				break
			}
		}
	}
	return counts
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	stats := a.stats
	var b strings.Builder

	b.WriteString(a.renderLoadError(cw))

	// Row 1: metric cards
	metrics := []components.Metric{
		{
			Label: "Campaigns",
			Value: cli.FormatNumber(int64(stats.Campaigns)),
			Delta: fmt.Sprintf("%d funded · %d active", stats.Funded, stats.Active),
		},
		{
			Label: "Raised",
			Value: funding.FormatAmount(stats.TotalRaised),
			Delta: "of " + funding.FormatAmount(stats.TotalGoal) + " goal",
		},
		{
			Label: "Progress",
			Value: cli.FormatPercent(stats.Progress.Percentage),
			Delta: funding.StatusLabel(stats.Progress),
		},
		{
			Label: "No data",
			Value: cli.FormatNumber(int64(stats.Unknown)),
			Delta: fmt.Sprintf("%d stale", a.stale),
		},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: top campaigns + progress distribution
	halves := components.LayoutRow(cw, 2)
	topW := halves[0]
	distW := halves[1]
	if a.isCompactLayout() {
		topW, distW = cw, cw
	}

	topCard := components.ContentCard(
		fmt.Sprintf("Top %d by Progress", topCampaigns),
		a.renderTopCampaigns(components.CardInnerWidth(topW)),
		topW,
	)
	distCard := components.ContentCard(
		"Progress Distribution",
		components.BarChart(
			progressDistribution(a.filtered),
			bucketLabels(),
			t.Accent,
			components.CardInnerWidth(distW),
			6,
		),
		distW,
	)

	if a.isCompactLayout() {
		b.WriteString(topCard)
		b.WriteString("\n")
		b.WriteString(distCard)
	} else {
		b.WriteString(components.CardRow([]string{topCard, distCard}))
	}
	return b.String()
}

func (a App) renderTopCampaigns(innerW int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	top := pipeline.Top(a.filtered, topCampaigns)
	if len(top) == 0 {
		return mutedStyle.Render("No campaigns yet")
	}

	nameW := innerW / 3
	if nameW < 12 {
		nameW = 12
	}
	amountW := 8
	barW := innerW - nameW - amountW - 2
	if barW < 10 {
		barW = 10
	}

	var body strings.Builder
	for _, c := range top {
		fmt.Fprintf(&body, "%s %s %s\n",
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, components.Truncate(c.DisplayName(), nameW))),
			components.FundingBar(c.Funding, barW),
			amountStyle.Render(fmt.Sprintf("%*s", amountW, funding.FormatAmount(c.Funding.Balance))))
	}
	return strings.TrimRight(body.String(), "\n")
}

func bucketLabels() []string {
	labels := make([]string, len(progressBuckets))
	for i, b := range progressBuckets {
		labels[i] = b.label
	}
	return labels
}
