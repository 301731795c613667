package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Marketplace totals and funding progress",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	result, err := loadCampaigns(cmd.Context())
	if err != nil {
		return err
	}

	if len(result.Campaigns) == 0 {
		fmt.Println("\n  No campaigns found for this factory.")
		fmt.Println("  Create one on the marketplace, then come back!")
		return nil
	}

	filtered, err := applyFilters(result.Campaigns, loadConfig())
	if err != nil {
		return err
	}
	stats := pipeline.Aggregate(filtered)

	if stats.Campaigns == 0 {
		fmt.Println("\n  No campaigns match the selected filters.")
		return nil
	}

	title := "CROWDFUNDING MARKETPLACE"
	if desc := filterDescription(); desc != "" {
		title += "  " + desc
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	owners := pipeline.AggregateOwners(filtered)

	rows := [][]string{
		{"Campaigns", cli.FormatNumber(int64(stats.Campaigns))},
		{"Funded", cli.FormatNumber(int64(stats.Funded))},
		{"Active", cli.FormatNumber(int64(stats.Active))},
		{"No data", cli.FormatNumber(int64(stats.Unknown))},
		{"Owners", cli.FormatNumber(int64(len(owners)))},
		{"---"},
		{"Total Raised", funding.FormatAmount(stats.TotalRaised)},
		{"Total Goal", funding.FormatAmount(stats.TotalGoal)},
		{"Progress", cli.FormatPercent(stats.Progress.Percentage)},
		{"Status", funding.StatusLabel(stats.Progress)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	top := pipeline.Top(filtered, 5)
	if len(top) > 0 {
		topRows := make([][]string, 0, len(top))
		for _, c := range top {
			topRows = append(topRows, []string{
				c.DisplayName(),
				cli.RenderFundingBar(c.Funding, 20),
				funding.FormatAmount(c.Funding.Balance),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top Campaigns",
			Headers: []string{"Campaign", "Progress", "Raised"},
			Rows:    topRows,
		}))
	}

	if result.Offline {
		fmt.Fprintf(os.Stderr, "\n  Showing cached data: the chain could not be reached\n")
	} else if result.Partial > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d campaigns have unreadable funding values\n", result.Partial)
	}

	return nil
}
