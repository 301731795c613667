package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/theirongolddev/crowdscope/internal/model"
)

// campaignSource exposes campaign names to the fuzzy matcher.
type campaignSource []model.Campaign

func (s campaignSource) String(i int) string { return s[i].DisplayName() }
func (s campaignSource) Len() int            { return len(s) }

// filterCampaignsBySearch returns the campaigns whose name fuzzy-matches
// query, best match first. An empty query returns campaigns unchanged.
func filterCampaignsBySearch(campaigns []model.Campaign, query string) []model.Campaign {
	query = strings.TrimSpace(query)
	if query == "" {
		return campaigns
	}
	matches := fuzzy.FindFrom(query, campaignSource(campaigns))
	out := make([]model.Campaign, len(matches))
	for i, m := range matches {
		out[i] = campaigns[m.Index]
	}
	return out
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "campaign name"
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

// updateCampaignSearch handles key events while the search box is open.
func (a App) updateCampaignSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.campState.searchQuery = strings.TrimSpace(a.campState.searchInput.Value())
		a.campState.searching = false
		a.campState.cursor = 0
		a.campState.viewMode = campViewGrid
		return a, nil
	case "esc":
		a.campState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.campState.searchInput, cmd = a.campState.searchInput.Update(msg)
	return a, cmd
}
