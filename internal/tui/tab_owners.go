package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/tui/components"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

func (a App) renderOwnersTab(cw int) string {
	t := theme.Active
	owners := a.owners

	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.Address).Background(t.Surface)
	raisedStyle := lipgloss.NewStyle().Foreground(t.FundedBright).Background(t.Surface)

	if len(owners) == 0 {
		return components.ContentCard("Owners", mutedStyle.Render("No campaigns loaded"), cw)
	}

	var body strings.Builder
	if a.isCompactLayout() {
		// Owner, Camps, Raised, Progress
		nameW := innerW - 6 - 10 - 9 - 3
		if nameW < 14 {
			nameW = 14
		}
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %10s %9s", nameW, "Owner", "Camps", "Raised", "Progress")))
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
		body.WriteString("\n")

		for _, o := range owners {
			p := funding.ComputeProgress(o.TotalGoal, o.TotalRaised)
			body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, components.Truncate(cli.ShortAddress(o.Owner), nameW))))
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %6d", o.Campaigns)))
			body.WriteString(raisedStyle.Render(fmt.Sprintf(" %10s", funding.FormatAmount(o.TotalRaised))))
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %9s", cli.FormatPercent(p.Percentage))))
			body.WriteString("\n")
		}
	} else {
		// Owner, Camps, Funded, Raised, Goal, bar
		fixed := 7 + 8 + 11 + 13
		barW := 24
		nameW := innerW - fixed - barW
		if nameW < 42 {
			nameW = 42
		}
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %7s %10s %10s  %s", nameW, "Owner", "Camps", "Funded", "Raised", "Goal", "Progress")))
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
		body.WriteString("\n")

		for _, o := range owners {
			body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, o.Owner)))
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %6d %7d", o.Campaigns, o.Funded)))
			body.WriteString(raisedStyle.Render(fmt.Sprintf(" %10s", funding.FormatAmount(o.TotalRaised))))
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %10s  ", funding.FormatAmount(o.TotalGoal))))
			body.WriteString(components.FundingBar(model.FundingState{Goal: o.TotalGoal, Balance: o.TotalRaised}, barW))
			body.WriteString("\n")
		}
	}

	title := fmt.Sprintf("Owners (%d)", len(owners))
	return components.ContentCard(title, strings.TrimRight(body.String(), "\n"), cw)
}
