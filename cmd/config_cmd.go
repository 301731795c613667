// Package cmd implements the crowdscope CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Cache: %s\n", pipeline.CachePath())
	fmt.Println()

	fmt.Println("  [Chain]")
	fmt.Printf("    RPC endpoint: %s\n", maskEndpoint(cfg.Chain.RPCURL))
	fmt.Printf("    Network:      %s\n", cfg.Chain.Network)
	if cfg.Chain.FactoryAddress != "" {
		fmt.Printf("    Factory:      %s\n", cfg.Chain.FactoryAddress)
	} else {
		fmt.Println("    Factory:      not configured")
	}
	fmt.Printf("    Timeout:      %s\n", cfg.Chain.Timeout())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Workers:      %d\n", cfg.General.Workers)
	fmt.Printf("    Default sort: %s\n", cfg.General.DefaultSort)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:      %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:     %s\n", cfg.Daemon.Interval())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:     %v\n", cfg.TUI.AutoRefresh)
	fmt.Printf("    Refresh interval: %s\n", cfg.TUI.RefreshInterval())
	fmt.Println()

	fmt.Println("  Environment overrides: CROWDSCOPE_RPC_URL, CROWDSCOPE_FACTORY, CROWDSCOPE_THEME, CROWDSCOPE_WORKERS")
	fmt.Println("  Run `crowdscope setup` to reconfigure.")
	return nil
}
