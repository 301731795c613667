package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	prompt := func() string {
		fmt.Print("     > ")
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to crowdscope!")
	fmt.Println()

	// 1. Network
	networks := config.Networks()
	fmt.Println("  1. Network")
	for i, n := range networks {
		marker := ""
		if n.Name == config.NormalizeNetwork(cfg.Chain.Network) {
			marker = " [current]"
		}
		fmt.Printf("     (%d) %s (chain %d)%s\n", i+1, n.Name, n.ChainID, marker)
	}
	if idx, err := strconv.Atoi(prompt()); err == nil && idx >= 1 && idx <= len(networks) {
		cfg.Chain.Network = networks[idx-1].Name
		cfg.Chain.RPCURL = networks[idx-1].RPCURL
	}
	fmt.Println()

	// 2. RPC endpoint
	fmt.Println("  2. RPC endpoint")
	fmt.Println("     Leave empty to keep the current endpoint.")
	fmt.Printf("     Current: %s\n", maskEndpoint(cfg.Chain.RPCURL))
	for {
		rpc := prompt()
		if rpc == "" {
			break
		}
		if err := chain.ValidateEndpoint(rpc); err != nil {
			fmt.Printf("     %v, try again\n", err)
			continue
		}
		cfg.Chain.RPCURL = rpc
		break
	}
	fmt.Println()

	// 3. Factory
	fmt.Println("  3. Campaign factory address")
	if cfg.Chain.FactoryAddress != "" {
		fmt.Printf("     Current: %s\n", cfg.Chain.FactoryAddress)
	}
	for {
		in := prompt()
		if in == "" {
			break
		}
		addr, err := chain.ParseAddress(in)
		if err != nil {
			fmt.Printf("     %v, try again\n", err)
			continue
		}
		cfg.Chain.FactoryAddress = addr.Hex()
		break
	}
	fmt.Println()

	// 4. Theme
	names := theme.Names()
	fmt.Println("  4. Color theme")
	for i, name := range names {
		def := ""
		if i == 0 {
			def = " [default]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, name, def)
	}
	if idx, err := strconv.Atoi(prompt()); err == nil && idx >= 1 && idx <= len(names) {
		cfg.Appearance.Theme = names[idx-1]
	} else if !theme.Valid(cfg.Appearance.Theme) {
		cfg.Appearance.Theme = names[0]
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	checkEndpoint(cmd.Context(), cfg)
	fmt.Println("  Run `crowdscope setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

// checkEndpoint reports whether the saved endpoint answers and serves the
// configured network.
func checkEndpoint(ctx context.Context, cfg config.Config) {
	client, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.Timeout())
	if err != nil {
		fmt.Printf("  Endpoint check failed: %v\n", err)
		return
	}
	defer client.Close()

	info, err := client.Info(ctx)
	if err != nil {
		fmt.Printf("  Endpoint check failed: %v\n", err)
		return
	}
	fmt.Printf("  Connected: %s at block %d\n", chain.NetworkName(info.ChainID), info.BlockNumber)
	if msg := networkMismatch(cfg.Chain.Network, info); msg != "" {
		fmt.Printf("  Warning: %s\n", msg)
	}
}

// maskEndpoint hides the path and query of an RPC URL, where hosted
// providers put API keys.
func maskEndpoint(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return maskSecret(raw)
	}
	if u.Path == "" || u.Path == "/" {
		return u.Scheme + "://" + u.Host
	}
	return u.Scheme + "://" + u.Host + "/" + maskSecret(strings.TrimPrefix(u.Path, "/"))
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
