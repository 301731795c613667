package tui

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/store"
	"github.com/theirongolddev/crowdscope/internal/tui/components"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

// Campaigns tab modes. The grid is the zero value so it's the default.
const (
	campViewGrid = iota
	campViewDetail
)

const (
	minCardWidth = 36
	maxGridCols  = 4
)

// campaignsState holds the campaigns tab state.
type campaignsState struct {
	cursor   int
	viewMode int

	searching   bool
	searchInput textinput.Model
	searchQuery string

	history    []store.BalancePoint
	historyFor string
	historyErr error
}

// moveCursor moves the selection by delta within [0, n).
func (s *campaignsState) moveCursor(delta, n int) {
	next := s.cursor + delta
	if next < 0 || next >= n {
		return
	}
	s.cursor = next
}

// gridColumns returns how many campaign cards fit side by side.
func (a App) gridColumns() int {
	cols := a.contentWidth() / minCardWidth
	if cols < 1 {
		cols = 1
	}
	if cols > maxGridCols {
		cols = maxGridCols
	}
	return cols
}

// visibleCampaigns returns the filtered campaigns narrowed by the search query.
func (a App) visibleCampaigns() []model.Campaign {
	return filterCampaignsBySearch(a.filtered, a.campState.searchQuery)
}

// updateCampaignsKey handles campaigns tab keys. handled is false for keys
// that fall through to the global bindings.
func (a App) updateCampaignsKey(key string) (m tea.Model, cmd tea.Cmd, handled bool) {
	visible := a.visibleCampaigns()
	cols := a.gridColumns()
	cs := &a.campState

	switch key {
	case "/":
		cs.searching = true
		cs.searchInput = newSearchInput()
		cs.searchInput.SetValue(cs.searchQuery)
		cs.searchInput.Focus()
		return a, cs.searchInput.Cursor.BlinkCmd(), true
	case "s":
		a.sortKey = nextSortKey(a.sortKey)
		a.recompute()
		return a, nil, true
	case "esc":
		switch {
		case cs.viewMode == campViewDetail:
			cs.viewMode = campViewGrid
		case cs.searchQuery != "":
			cs.searchQuery = ""
			cs.cursor = 0
		}
		return a, nil, true
	case "q":
		if cs.viewMode == campViewDetail {
			cs.viewMode = campViewGrid
			return a, nil, true
		}
		return a, nil, false
	case "enter":
		if cs.cursor >= len(visible) {
			return a, nil, true
		}
		if cs.viewMode == campViewDetail {
			cs.viewMode = campViewGrid
			return a, nil, true
		}
		sel := visible[cs.cursor]
		cs.viewMode = campViewDetail
		cs.historyFor = sel.Address
		cs.history = nil
		cs.historyErr = nil
		return a, historyCmd(sel.Address, a.noCache), true
	}

	if cs.viewMode == campViewDetail {
		return a, nil, false
	}

	switch key {
	case "j", "down":
		cs.moveCursor(cols, len(visible))
	case "k", "up":
		cs.moveCursor(-cols, len(visible))
	case "l":
		cs.moveCursor(1, len(visible))
	case "h":
		cs.moveCursor(-1, len(visible))
	case "g":
		cs.cursor = 0
	case "G":
		if len(visible) > 0 {
			cs.cursor = len(visible) - 1
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func nextSortKey(k pipeline.SortKey) pipeline.SortKey {
	for i, key := range pipeline.SortKeys {
		if key == k {
			return pipeline.SortKeys[(i+1)%len(pipeline.SortKeys)]
		}
	}
	return pipeline.SortKeys[0]
}

func (a App) renderCampaignsTab(cw, h int) string {
	t := theme.Active
	cs := a.campState
	visible := a.visibleCampaigns()

	var b strings.Builder
	if banner := a.renderLoadError(cw); banner != "" {
		b.WriteString(banner)
		h -= lipgloss.Height(banner)
	}
	if cs.searching {
		b.WriteString(lipgloss.NewStyle().Background(t.Surface).Width(cw).Render(" " + cs.searchInput.View()))
		b.WriteString("\n")
		h--
	}

	if len(visible) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		msg := "No campaigns found"
		if cs.searchQuery != "" {
			msg = fmt.Sprintf("No campaigns match %q", cs.searchQuery)
		}
		b.WriteString(components.ContentCard("Campaigns", muted.Render(msg), cw))
		return b.String()
	}

	if cs.viewMode == campViewDetail && cs.cursor < len(visible) {
		b.WriteString(a.renderCampaignDetail(visible[cs.cursor], cw))
		return b.String()
	}

	b.WriteString(a.renderCampaignGrid(visible, cw, h))
	return b.String()
}

// renderCampaignGrid renders the card grid scrolled so the cursor's row is visible.
func (a App) renderCampaignGrid(campaigns []model.Campaign, cw, h int) string {
	cols := a.gridColumns()
	widths := components.LayoutRow(cw, cols)

	visibleRows := h / components.CampaignCardHeight
	if visibleRows < 1 {
		visibleRows = 1
	}
	totalRows := (len(campaigns) + cols - 1) / cols
	cursorRow := a.campState.cursor / cols

	first := 0
	if cursorRow >= visibleRows {
		first = cursorRow - visibleRows + 1
	}
	last := first + visibleRows
	if last > totalRows {
		last = totalRows
	}

	rows := make([]string, 0, last-first)
	for r := first; r < last; r++ {
		cards := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			if idx >= len(campaigns) {
				break
			}
			cards = append(cards, components.CampaignCard(campaigns[idx], widths[c], idx == a.campState.cursor))
		}
		rows = append(rows, components.CardRow(cards))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderCampaignDetail(c model.Campaign, cw int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)
	cs := a.campState

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value) + "\n"
	}

	var body strings.Builder
	body.WriteString(labelStyle.Render(components.Truncate(c.DisplayDescription(), inner)))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", inner)))
	body.WriteString("\n\n")

	body.WriteString(row("Address", c.Address))
	body.WriteString(row("Owner", c.Owner))
	body.WriteString("\n")

	body.WriteString(headerStyle.Render("FUNDING"))
	body.WriteString("\n")
	barW := inner
	if barW > 60 {
		barW = 60
	}
	body.WriteString(components.FundingBar(c.Funding, barW))
	body.WriteString("\n")
	body.WriteString(row("Raised", fmt.Sprintf("%s (%s)", funding.FormatAmount(c.Funding.Balance), cli.FormatEther(c.Funding.Balance))))
	body.WriteString(row("Goal", fmt.Sprintf("%s (%s)", funding.FormatAmount(c.Funding.Goal), cli.FormatEther(c.Funding.Goal))))
	body.WriteString(row("Progress", cli.FormatProgress(c.Funding)))
	body.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "Status")) + components.StatusBadge(funding.Classify(c.Funding)) + "\n")
	body.WriteString(row("Reads", fmt.Sprintf("goal %s · balance %s", c.GoalStatus, c.BalanceStatus)))
	body.WriteString(row("Fetched", cli.FormatAge(c.FetchedAt)))
	if c.Stale {
		body.WriteString(warnStyle.Render("Some values come from the cache; the live read failed."))
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(headerStyle.Render("BALANCE HISTORY"))
	body.WriteString("\n")
	switch {
	case cs.historyErr != nil:
		body.WriteString(warnStyle.Render("history unavailable: " + cs.historyErr.Error()))
	case cs.historyFor == c.Address && len(cs.history) > 0:
		values := make([]*big.Int, len(cs.history))
		for i, p := range cs.history {
			values[i] = p.Balance
		}
		body.WriteString(components.Sparkline(cli.BigSeries(values), t.Funded))
		first, latest := cs.history[0], cs.history[len(cs.history)-1]
		body.WriteString(labelStyle.Render(fmt.Sprintf("  %d points since %s  ", len(cs.history), first.At.Local().Format("Jan 02 15:04"))))
		body.WriteString(valueStyle.Render(cli.FormatDelta(latest.Balance, first.Balance)))
	default:
		body.WriteString(mutedStyle.Render("no history recorded yet"))
	}

	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render("[Esc] back  [r] refresh  [q] back"))

	return components.ContentCard(c.DisplayName(), body.String(), cw)
}
