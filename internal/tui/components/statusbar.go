package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

// StatusInfo is what the bottom status bar reports about the loaded data.
type StatusInfo struct {
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Offline     bool
	Stale       int
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	bg := lipgloss.NewStyle().Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface).Bold(true)

	left := muted.Render(" [?]help  [/]search  [r]efresh  [q]uit")

	var right []string
	if info.Offline {
		right = append(right, warn.Render("OFFLINE"))
	}
	if info.Stale > 0 {
		right = append(right, warn.Render(fmt.Sprintf("%d stale", info.Stale)))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("↻ refreshing"))
	case info.AutoRefresh:
		right = append(right, muted.Render("auto"))
	}
	if info.DataAge != "" {
		right = append(right, muted.Render("Data: "+info.DataAge))
	}
	rightStr := strings.Join(right, bg.Render("  ")) + bg.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return left + bg.Render(strings.Repeat(" ", padding)) + rightStr
}
