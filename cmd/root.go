package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/store"
)

var (
	flagRPC     string
	flagFactory string
	flagWorkers int
	flagOwner   string
	flagName    string
	flagStatus  string
	flagSort    string
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

var logger = zap.NewNop()

var errNoFactory = errors.New("no factory address configured (run `crowdscope setup` or pass --factory)")

var rootCmd = &cobra.Command{
	Use:   "crowdscope",
	Short: "Crowdfunding marketplace metrics CLI",
	Long:  "Track on-chain crowdfunding campaigns: funding progress, totals, owners, and more.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// The dashboard owns the terminal.
		if cmd.Name() == "tui" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if flagVerbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE:         runSummary,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRPC, "rpc", "", "RPC endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagFactory, "factory", "f", "", "Campaign factory address (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&flagWorkers, "workers", "w", 0, "Concurrent campaign fetches (0 = config)")
	rootCmd.PersistentFlags().StringVarP(&flagOwner, "owner", "o", "", "Filter to campaigns created by this address")
	rootCmd.PersistentFlags().StringVar(&flagName, "name", "", "Filter to campaign names (substring match)")
	rootCmd.PersistentFlags().StringVar(&flagStatus, "status", "", "Filter by status: funded, active or unknown")
	rootCmd.PersistentFlags().StringVarP(&flagSort, "sort", "s", "", "Sort by progress, raised, goal or name")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache, read everything from chain")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config unreadable, using defaults", zap.String("path", config.Path()), zap.Error(err))
	}
	if flagRPC != "" {
		cfg.Chain.RPCURL = flagRPC
	}
	if flagFactory != "" {
		cfg.Chain.FactoryAddress = flagFactory
	}
	if flagWorkers > 0 {
		cfg.General.Workers = flagWorkers
	}
	return cfg
}

func resolveFactory(cfg config.Config) (common.Address, error) {
	if strings.TrimSpace(cfg.Chain.FactoryAddress) == "" {
		return common.Address{}, errNoFactory
	}
	return chain.ParseAddress(cfg.Chain.FactoryAddress)
}

func progressPrinter() pipeline.ProgressFunc {
	return func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Fetching %s", cli.RenderProgressBar(current, total, 20))
		}
	}
}

// loadCampaigns is the shared data loading path used by all commands.
// It saves every fetch to the SQLite cache and serves the cached snapshot
// when the chain cannot be reached.
func loadCampaigns(ctx context.Context) (*pipeline.LoadResult, error) {
	cfg := loadConfig()
	factory, err := resolveFactory(cfg)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Listing campaigns from %s...\n", cli.ShortAddress(factory.Hex()))
	}

	client, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.Timeout())
	if err != nil {
		return loadOffline(err)
	}
	defer client.Close()

	progressFn := progressPrinter()

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("cache unavailable", zap.String("path", pipeline.CachePath()), zap.Error(err))
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, reading from chain only\n")
			}
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(ctx, client, factory, cache, cfg.General.Workers, progressFn)
			if cr == nil {
				return nil, err
			}
			if err != nil {
				logger.Warn("factory unreachable, serving cached snapshot",
					zap.String("rpc", client.Endpoint()),
					zap.Int("campaigns", len(cr.Campaigns)),
					zap.Error(err))
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "  Chain unavailable, showing %s cached campaigns\n",
						cli.FormatNumber(int64(len(cr.Campaigns))))
				}
				return &cr.LoadResult, nil
			}

			logger.Debug("campaigns loaded",
				zap.Int("total", cr.Total),
				zap.Int("complete", cr.Complete),
				zap.Int("stale", cr.Stale),
				zap.Int("saved", cr.Saved),
				zap.Int("history_rows", cr.HistoryRows),
				zap.Int("cache_errors", cr.CacheErrors))
			if !flagQuiet && cr.Total > 0 {
				fmt.Fprintf(os.Stderr, "\r  Loaded %s campaigns (%d complete, %d stale)    \n",
					cli.FormatNumber(int64(cr.Total)), cr.Complete, cr.Stale)
			}
			return &cr.LoadResult, nil
		}
	}

	result, err := pipeline.Load(ctx, client, factory, cfg.General.Workers, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.Total > 0 {
		fmt.Fprintf(os.Stderr, "\r  Loaded %s campaigns (%d complete)    \n",
			cli.FormatNumber(int64(result.Total)), result.Complete)
	}
	return result, nil
}

// loadOffline serves the cached snapshot after cause prevented any chain access.
func loadOffline(cause error) (*pipeline.LoadResult, error) {
	if flagNoCache {
		return nil, cause
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return nil, cause
	}
	defer func() { _ = cache.Close() }()

	result, err := pipeline.LoadCached(cache)
	if err != nil {
		return nil, cause
	}
	result.Offline = true
	logger.Warn("chain unavailable, serving cached snapshot", zap.Int("campaigns", result.Total), zap.Error(cause))
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Chain unavailable (%v), showing %s cached campaigns\n",
			cause, cli.FormatNumber(int64(result.Total)))
	}
	return result, nil
}

// applyFilters returns the campaigns matching the filter flags, sorted.
func applyFilters(campaigns []model.Campaign, cfg config.Config) ([]model.Campaign, error) {
	status, err := pipeline.ParseStatus(flagStatus)
	if err != nil {
		return nil, err
	}
	sortBy := flagSort
	if sortBy == "" {
		sortBy = cfg.General.DefaultSort
	}
	key, err := pipeline.ParseSortKey(sortBy)
	if err != nil {
		return nil, err
	}

	filtered := campaigns
	if flagOwner != "" {
		filtered = pipeline.FilterByOwner(filtered, flagOwner)
	}
	if flagName != "" {
		filtered = pipeline.FilterByName(filtered, flagName)
	}
	if status != "" {
		filtered = pipeline.FilterByStatus(filtered, status)
	}

	filtered = append([]model.Campaign(nil), filtered...)
	pipeline.Sort(filtered, key)
	return filtered, nil
}

func filterDescription() string {
	var parts []string
	if flagOwner != "" {
		parts = append(parts, "owner "+cli.ShortAddress(flagOwner))
	}
	if flagName != "" {
		parts = append(parts, fmt.Sprintf("name %q", flagName))
	}
	if flagStatus != "" {
		parts = append(parts, strings.ToLower(flagStatus))
	}
	return strings.Join(parts, ", ")
}
