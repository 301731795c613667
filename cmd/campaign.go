package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/store"
)

const historyPoints = 60

var campaignCmd = &cobra.Command{
	Use:   "campaign <address>",
	Short: "Show one campaign's funding detail and balance history",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaign,
}

func init() {
	rootCmd.AddCommand(campaignCmd)
}

func runCampaign(cmd *cobra.Command, args []string) error {
	addr, err := chain.ParseAddress(args[0])
	if err != nil {
		return err
	}
	cfg := loadConfig()

	var cache *store.Cache
	if !flagNoCache {
		cache, err = store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("cache unavailable", zap.String("path", pipeline.CachePath()), zap.Error(err))
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	var c model.Campaign
	client, err := chain.Dial(cmd.Context(), cfg.Chain.RPCURL, cfg.Chain.Timeout())
	if err == nil {
		defer client.Close()
		c = chain.FetchCampaignAt(cmd.Context(), client, addr)
	}

	if cache != nil {
		prev, ok, lerr := cache.LoadCampaign(addr.Hex())
		switch {
		case lerr != nil:
			logger.Warn("cached campaign unreadable", zap.String("address", addr.Hex()), zap.Error(lerr))
		case ok && err != nil:
			c = prev
			c.Stale = true
		case ok:
			c = pipeline.MergeStale(c, prev)
			if _, serr := cache.SaveCampaign(c); serr != nil {
				logger.Warn("cache write failed", zap.String("address", addr.Hex()), zap.Error(serr))
			}
		default:
			if err == nil {
				if _, serr := cache.SaveCampaign(c); serr != nil {
					logger.Warn("cache write failed", zap.String("address", addr.Hex()), zap.Error(serr))
				}
			}
		}
	}
	if c.Address == "" {
		return fmt.Errorf("campaign %s: %w", addr.Hex(), err)
	}

	p := funding.Compute(c.Funding)

	fmt.Println()
	fmt.Println(cli.RenderTitle(c.DisplayName()))
	fmt.Println()

	rows := [][]string{
		{"Address", c.Address},
		{"Owner", c.Owner},
		{"Description", c.DisplayDescription()},
		{"---"},
		{"Status", cli.RenderStatus(c.Funding)},
		{"Progress", cli.RenderFundingBar(c.Funding, 24)},
		{"Raised", amountDetail(c.Funding.Balance)},
		{"Goal", amountDetail(c.Funding.Goal)},
		{"Goal Reached", fmt.Sprintf("%t", p.IsGoalReached)},
		{"---"},
		{"Goal Read", c.GoalStatus.String()},
		{"Balance Read", c.BalanceStatus.String()},
		{"Fetched", cli.FormatAge(c.FetchedAt)},
	}
	if c.Stale {
		rows = append(rows, []string{"Cache", cli.RenderStale(true) + " (last known values)"})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))

	if cache == nil {
		return nil
	}
	history, err := cache.BalanceHistory(c.Address, historyPoints)
	if err != nil {
		logger.Warn("balance history unreadable", zap.String("address", c.Address), zap.Error(err))
		return nil
	}
	if len(history) < 2 {
		fmt.Println("  Balance history appears after a few refreshes.")
		fmt.Println()
		return nil
	}

	balances := make([]*big.Int, len(history))
	for i, h := range history {
		balances[i] = h.Balance
	}
	first, last := history[0], history[len(history)-1]
	fmt.Println("  Balance History")
	fmt.Printf("  %s  %s\n", cli.RenderSparkline(cli.BigSeries(balances)), cli.FormatDelta(last.Balance, first.Balance))
	fmt.Printf("  %d points since %s\n\n", len(history), cli.FormatAge(first.At))
	return nil
}

func amountDetail(v *big.Int) string {
	if v == nil {
		return "no data"
	}
	return fmt.Sprintf("%s  (%s)", funding.FormatAmount(v), cli.FormatEther(v))
}
