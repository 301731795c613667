package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

// setupValues holds the first-run form's bound values.
type setupValues struct {
	network string
	rpcURL  string
	factory string
	theme   string
}

// defaultSetupValues seeds the form from cfg. An RPC URL equal to the
// network preset is left empty so switching networks also switches endpoints.
func defaultSetupValues(cfg config.Config) setupValues {
	vals := setupValues{
		network: config.NormalizeNetwork(cfg.Chain.Network),
		rpcURL:  cfg.Chain.RPCURL,
		factory: cfg.Chain.FactoryAddress,
		theme:   cfg.Appearance.Theme,
	}
	if net, ok := config.LookupNetwork(vals.network); ok && net.RPCURL == vals.rpcURL {
		vals.rpcURL = ""
	}
	return vals
}

func validateOptionalEndpoint(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return chain.ValidateEndpoint(s)
}

func validateFactory(s string) error {
	_, err := chain.ParseAddress(s)
	return err
}

// newSetupForm builds the first-run huh form bound to vals.
func newSetupForm(numCampaigns int, vals *setupValues) *huh.Form {
	networkOpts := make([]huh.Option[string], 0, len(config.Networks()))
	for _, n := range config.Networks() {
		networkOpts = append(networkOpts, huh.NewOption(fmt.Sprintf("%s (chain %d)", n.Name, n.ChainID), n.Name))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	welcome := "Let's point crowdscope at a campaign factory."
	if numCampaigns > 0 {
		welcome = fmt.Sprintf("Loaded %d campaigns with the defaults. Let's save your settings.", numCampaigns)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to crowdscope").
				Description(welcome),
			huh.NewSelect[string]().
				Title("Network").
				Options(networkOpts...).
				Value(&vals.network),
			huh.NewInput().
				Title("RPC endpoint").
				Description("Leave empty to use the network's public endpoint.").
				Placeholder(config.DefaultRPCURL).
				Validate(validateOptionalEndpoint).
				Value(&vals.rpcURL),
			huh.NewInput().
				Title("Campaign factory address").
				Placeholder("0x...").
				Validate(validateFactory).
				Value(&vals.factory),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithShowHelp(false)
}

// saveSetupConfig persists the form values and applies them. It reports
// whether the factory changed and campaigns must be reloaded.
func (a *App) saveSetupConfig() bool {
	cfg := loadConfigOrDefault()

	if net, ok := config.LookupNetwork(a.setupVals.network); ok {
		cfg.Chain.Network = net.Name
		cfg.Chain.RPCURL = net.RPCURL
	}
	if u := strings.TrimSpace(a.setupVals.rpcURL); u != "" {
		cfg.Chain.RPCURL = u
	}

	changed := false
	if addr, err := chain.ParseAddress(a.setupVals.factory); err == nil {
		cfg.Chain.FactoryAddress = addr.Hex()
		changed = addr != a.factory
		a.factory = addr
	}

	if theme.Valid(a.setupVals.theme) {
		cfg.Appearance.Theme = a.setupVals.theme
		theme.SetActive(a.setupVals.theme)
	}

	_ = config.Save(cfg)
	return changed
}
