package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/tui/components"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

const (
	settingsFieldRPCURL = iota
	settingsFieldFactory
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

const minRefreshIntervalSec = 5

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
	note    string
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil
	a.settings.note = ""

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldRPCURL:
		ti.Placeholder = config.DefaultRPCURL
		ti.SetValue(cfg.Chain.RPCURL)
	case settingsFieldFactory:
		ti.Placeholder = "0x..."
		ti.SetValue(cfg.Chain.FactoryAddress)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = fmt.Sprintf("30 (seconds, minimum %d)", minRefreshIntervalSec)
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		refresh := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if refresh && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.loader())
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates and persists the field being edited. It reports
// whether the campaigns must be reloaded.
func (a *App) settingsSave() bool {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	refresh := false

	switch a.settings.cursor {
	case settingsFieldRPCURL:
		if err := chain.ValidateEndpoint(val); err != nil {
			a.settings.saveErr = err
			return false
		}
		cfg.Chain.RPCURL = val
		if val != a.rpcURL {
			a.settings.note = "RPC endpoint takes effect on next start"
		}
	case settingsFieldFactory:
		addr, err := chain.ParseAddress(val)
		if err != nil {
			a.settings.saveErr = err
			return false
		}
		cfg.Chain.FactoryAddress = addr.Hex()
		if addr != a.factory {
			a.factory = addr
			refresh = true
		}
	case settingsFieldTheme:
		if !theme.Valid(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return false
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("auto refresh must be true or false")
			return false
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		secs, err := strconv.Atoi(val)
		if err != nil || secs < minRefreshIntervalSec {
			a.settings.saveErr = fmt.Errorf("refresh interval must be at least %d seconds", minRefreshIntervalSec)
			return false
		}
		cfg.TUI.RefreshIntervalSec = secs
		a.refreshInterval = time.Duration(secs) * time.Second
	}

	a.settings.saveErr = config.Save(cfg)
	return refresh && a.settings.saveErr == nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.FundedBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	factory := cfg.Chain.FactoryAddress
	if factory == "" {
		factory = "(not set)"
	}

	fields := []struct{ label, value string }{
		{"RPC Endpoint", cfg.Chain.RPCURL},
		{"Factory", factory},
		{"Theme", cfg.Appearance.Theme},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if padLen := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	case a.settings.saved:
		formBody.WriteString("\n")
		msg := "Saved!"
		if a.settings.note != "" {
			msg += " " + a.settings.note
		}
		formBody.WriteString(greenStyle.Render(msg))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Endpoint:         ") + valueStyle.Render(a.rpcURL) + "\n")
	infoBody.WriteString(labelStyle.Render("Factory:          ") + valueStyle.Render(a.factory.Hex()) + "\n")
	infoBody.WriteString(labelStyle.Render("Campaigns loaded: ") + valueStyle.Render(cli.FormatNumber(int64(len(a.campaigns)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:        ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	infoBody.WriteString(labelStyle.Render("Last refresh:     ") + valueStyle.Render(cli.FormatAge(a.lastRefresh)) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:      ") + valueStyle.Render(config.Path()) + "\n")
	cachePath := pipeline.CachePath()
	if a.noCache {
		cachePath = "(disabled)"
	}
	infoBody.WriteString(labelStyle.Render("Cache:            ") + valueStyle.Render(cachePath))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
