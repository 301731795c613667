package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/tui"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	sortBy := flagSort
	if sortBy == "" {
		sortBy = cfg.General.DefaultSort
	}
	sortKey, err := pipeline.ParseSortKey(sortBy)
	if err != nil {
		return err
	}

	// A missing factory is not fatal: the setup form collects it.
	var factory common.Address
	if f, err := resolveFactory(cfg); err == nil {
		factory = f
	}

	// A nil reader shows the "chain unavailable" card with any cached
	// snapshot instead of refusing to start.
	opts := tui.Options{
		Factory: factory,
		RPCURL:  cfg.Chain.RPCURL,
		Workers: cfg.General.Workers,
		Owner:   flagOwner,
		Sort:    sortKey,
		NoCache: flagNoCache,
	}
	client, err := chain.Dial(cmd.Context(), cfg.Chain.RPCURL, cfg.Chain.Timeout())
	if err == nil {
		defer client.Close()
		opts.Reader = client
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
