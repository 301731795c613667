package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show RPC endpoint, network and factory status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Connecting to %s...\n", cfg.Chain.RPCURL)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	client, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.Timeout())
	if err != nil {
		if errors.Is(err, chain.ErrNoEndpoint) {
			return fmt.Errorf("%w (run `crowdscope setup` or pass --rpc)", err)
		}
		return err
	}
	defer client.Close()

	info, infoErr := client.Info(ctx)
	if infoErr != nil && info.ChainID == nil {
		return fmt.Errorf("endpoint %s: %w", client.Endpoint(), infoErr)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CROWDSCOPE STATUS"))
	fmt.Println()

	block := "unavailable"
	if infoErr == nil {
		block = cli.FormatNumber(int64(info.BlockNumber)) //nolint:gosec // block heights fit in int64
	}

	rows := [][]string{
		{"RPC Endpoint", client.Endpoint()},
		{"Network", fmt.Sprintf("%s (chain %s)", chain.NetworkName(info.ChainID), info.ChainID)},
		{"Latest Block", block},
		{"---"},
	}

	factory, ferr := resolveFactory(cfg)
	switch {
	case ferr != nil:
		rows = append(rows, []string{"Factory", "not configured"})
	default:
		rows = append(rows, []string{"Factory", factory.Hex()})
		records, lerr := chain.ListCampaigns(ctx, client, factory)
		if lerr != nil {
			logger.Warn("factory listing failed", zap.String("factory", factory.Hex()), zap.Error(lerr))
			rows = append(rows, []string{"Campaigns", "unreadable"})
		} else {
			rows = append(rows, []string{"Campaigns", cli.FormatNumber(int64(len(records)))})
		}
	}

	rows = append(rows, []string{"Cached", cachedCampaigns(pipeline.CachePath())})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Setting", "Value"},
		Rows:    rows,
	}))

	warnStyle := lipgloss.NewStyle().Foreground(cli.ColorOrange)
	if msg := networkMismatch(cfg.Chain.Network, info); msg != "" {
		fmt.Printf("  %s\n\n", warnStyle.Render(msg))
	}
	if ferr != nil {
		fmt.Printf("  %s\n\n", warnStyle.Render("Set a factory with `crowdscope setup` or --factory"))
	}

	fmt.Printf("  Checked at %s\n\n", time.Now().Format("3:04:05 PM"))
	return nil
}

// networkMismatch returns a warning when the endpoint serves a different
// chain than the configured network preset.
func networkMismatch(network string, info chain.Info) string {
	want, ok := config.LookupNetwork(network)
	if !ok || info.ChainID == nil {
		return ""
	}
	if info.ChainID.IsInt64() && info.ChainID.Int64() == want.ChainID {
		return ""
	}
	return fmt.Sprintf("Endpoint serves chain %s but the configured network is %s (chain %d)",
		info.ChainID, want.Name, want.ChainID)
}

// cachedCampaigns describes the snapshot cache at path without creating it.
func cachedCampaigns(path string) string {
	if flagNoCache {
		return "disabled"
	}
	if _, err := os.Stat(path); err != nil {
		return "empty"
	}
	cache, err := store.Open(path)
	if err != nil {
		logger.Warn("cache unavailable", zap.String("path", path), zap.Error(err))
		return "unreadable"
	}
	defer func() { _ = cache.Close() }()

	n, err := cache.CampaignCount()
	if err != nil {
		logger.Warn("cache count failed", zap.String("path", path), zap.Error(err))
		return "unreadable"
	}
	return fmt.Sprintf("%s campaigns", cli.FormatNumber(int64(n)))
}
