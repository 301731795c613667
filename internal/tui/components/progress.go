package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

// ProgressBar renders the loading progress bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Raising
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// FundingBar renders a campaign's funding bar followed by its percentage,
// occupying exactly width columns. Absent values render a muted "no data" bar.
func FundingBar(s model.FundingState, width int) string {
	t := theme.Active
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if !s.Complete() {
		barW := width - 8
		if barW < 1 {
			barW = 1
		}
		return mutedStyle.Render(strings.Repeat("░", barW)) +
			spaceStyle.Render(" ") + mutedStyle.Render("no data")
	}

	barW := width - 5
	if barW < 4 {
		barW = 4
	}

	color := t.StatusColor(funding.Classify(s))
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	p := funding.Compute(s)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)

	return bar.ViewAs(funding.Fraction(s.Goal, s.Balance)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3d%%", p.Percentage))
}
