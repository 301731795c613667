package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/funding"
)

var flagCampaignsLimit int

var campaignsCmd = &cobra.Command{
	Use:     "campaigns",
	Aliases: []string{"ls"},
	Short:   "List campaigns with funding progress",
	RunE:    runCampaigns,
}

func init() {
	campaignsCmd.Flags().IntVarP(&flagCampaignsLimit, "limit", "l", 0, "Max campaigns to show (0 = all)")
	rootCmd.AddCommand(campaignsCmd)
}

func runCampaigns(cmd *cobra.Command, _ []string) error {
	result, err := loadCampaigns(cmd.Context())
	if err != nil {
		return err
	}

	filtered, err := applyFilters(result.Campaigns, loadConfig())
	if err != nil {
		return err
	}
	if len(filtered) == 0 {
		fmt.Println("\n  No campaigns found.")
		return nil
	}

	total := len(filtered)
	if flagCampaignsLimit > 0 && len(filtered) > flagCampaignsLimit {
		filtered = filtered[:flagCampaignsLimit]
	}

	rows := make([][]string, 0, len(filtered))
	for _, c := range filtered {
		name := c.DisplayName()
		if c.Stale {
			name += " " + cli.RenderStale(true)
		}
		rows = append(rows, []string{
			name,
			cli.RenderStatus(c.Funding),
			cli.RenderFundingBar(c.Funding, 16),
			funding.FormatAmount(c.Funding.Balance),
			funding.FormatAmount(c.Funding.Goal),
			cli.ShortAddress(c.Owner),
		})
	}

	title := fmt.Sprintf("Campaigns (%d)", total)
	if desc := filterDescription(); desc != "" {
		title += "  " + desc
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Campaign", "Status", "Progress", "Raised", "Goal", "Owner"},
		Rows:    rows,
	}))

	if len(filtered) < total {
		fmt.Printf("  Showing %d of %d. Use --limit 0 to show all.\n", len(filtered), total)
	}
	if result.Offline {
		fmt.Fprintf(os.Stderr, "\n  Showing cached data: the chain could not be reached\n")
	}
	return nil
}
