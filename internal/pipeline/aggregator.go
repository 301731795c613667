// Package pipeline orchestrates campaign loading, caching, and marketplace aggregation.
package pipeline

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
)

// SortKey orders campaign listings.
type SortKey string

const (
	SortProgress SortKey = "progress"
	SortRaised   SortKey = "raised"
	SortGoal     SortKey = "goal"
	SortName     SortKey = "name"
)

// SortKeys lists the accepted sort keys in help order.
var SortKeys = []SortKey{SortProgress, SortRaised, SortGoal, SortName}

// ParseSortKey validates a user-supplied sort key. Empty means progress.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortProgress, nil
	}
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range SortKeys {
		if k == valid {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q (want progress, raised, goal or name)", s)
}

// Aggregate computes marketplace totals. Campaigns missing either funding
// value count as unknown and only contribute the value they have.
func Aggregate(campaigns []model.Campaign) model.MarketplaceStats {
	stats := model.MarketplaceStats{
		Campaigns:   len(campaigns),
		TotalRaised: new(big.Int),
		TotalGoal:   new(big.Int),
	}

	completeRaised := new(big.Int)
	completeGoal := new(big.Int)

	for _, c := range campaigns {
		switch funding.Classify(c.Funding) {
		case model.StatusFunded:
			stats.Funded++
		case model.StatusActive:
			stats.Active++
		default:
			stats.Unknown++
		}

		if c.Funding.Balance != nil {
			stats.TotalRaised.Add(stats.TotalRaised, c.Funding.Balance)
		}
		if c.Funding.Goal != nil {
			stats.TotalGoal.Add(stats.TotalGoal, c.Funding.Goal)
		}
		if c.Funding.Complete() {
			completeRaised.Add(completeRaised, c.Funding.Balance)
			completeGoal.Add(completeGoal, c.Funding.Goal)
		}
	}

	stats.Progress = funding.ComputeProgress(completeGoal, completeRaised)
	return stats
}

// FilterByOwner returns campaigns owned by the given address (case-insensitive).
func FilterByOwner(campaigns []model.Campaign, owner string) []model.Campaign {
	if owner == "" {
		return campaigns
	}
	var result []model.Campaign
	for _, c := range campaigns {
		if strings.EqualFold(c.Owner, owner) {
			result = append(result, c)
		}
	}
	return result
}

// FilterByName returns campaigns whose name contains the substring.
func FilterByName(campaigns []model.Campaign, name string) []model.Campaign {
	if name == "" {
		return campaigns
	}
	var result []model.Campaign
	for _, c := range campaigns {
		if containsIgnoreCase(c.Name, name) {
			result = append(result, c)
		}
	}
	return result
}

// FilterByStatus returns campaigns in the given bucket. An empty status
// keeps everything.
func FilterByStatus(campaigns []model.Campaign, status model.CampaignStatus) []model.Campaign {
	if status == "" {
		return campaigns
	}
	var result []model.Campaign
	for _, c := range campaigns {
		if funding.Classify(c.Funding) == status {
			result = append(result, c)
		}
	}
	return result
}

// ParseStatus validates a user-supplied status filter. Empty means no filter.
func ParseStatus(s string) (model.CampaignStatus, error) {
	switch st := model.CampaignStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case "", model.StatusFunded, model.StatusActive, model.StatusUnknown:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q (want funded, active or unknown)", s)
	}
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Sort orders campaigns in place. Numeric keys sort descending with absent
// values last; name sorts ascending. Ties keep address order.
func Sort(campaigns []model.Campaign, key SortKey) {
	sort.SliceStable(campaigns, func(i, j int) bool {
		a, b := campaigns[i], campaigns[j]
		switch key {
		case SortName:
			an, bn := strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())
			if an != bn {
				return an < bn
			}
		case SortRaised:
			if c := cmpDesc(a.Funding.Balance, b.Funding.Balance); c != 0 {
				return c < 0
			}
		case SortGoal:
			if c := cmpDesc(a.Funding.Goal, b.Funding.Goal); c != 0 {
				return c < 0
			}
		default:
			pa, pb := funding.Compute(a.Funding), funding.Compute(b.Funding)
			if pa.Percentage != pb.Percentage {
				return pa.Percentage > pb.Percentage
			}
			if a.Funding.Complete() != b.Funding.Complete() {
				return a.Funding.Complete()
			}
			if c := cmpDesc(a.Funding.Balance, b.Funding.Balance); c != 0 {
				return c < 0
			}
		}
		return a.Address < b.Address
	})
}

// cmpDesc orders larger values first and nil last.
func cmpDesc(a, b *big.Int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Cmp(a)
}

// Top returns the first n campaigns by progress without modifying the input.
func Top(campaigns []model.Campaign, n int) []model.Campaign {
	sorted := make([]model.Campaign, len(campaigns))
	copy(sorted, campaigns)
	Sort(sorted, SortProgress)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
