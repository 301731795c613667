package pipeline

import (
	"math/big"
	"sort"

	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
)

// AggregateOwners computes per-owner totals, sorted by amount raised.
func AggregateOwners(campaigns []model.Campaign) []model.OwnerStats {
	byOwner := make(map[string]*model.OwnerStats)

	for _, c := range campaigns {
		row, ok := byOwner[c.Owner]
		if !ok {
			row = &model.OwnerStats{
				Owner:       c.Owner,
				TotalRaised: new(big.Int),
				TotalGoal:   new(big.Int),
			}
			byOwner[c.Owner] = row
		}
		row.Campaigns++
		if funding.Classify(c.Funding) == model.StatusFunded {
			row.Funded++
		}
		if c.Funding.Balance != nil {
			row.TotalRaised.Add(row.TotalRaised, c.Funding.Balance)
		}
		if c.Funding.Goal != nil {
			row.TotalGoal.Add(row.TotalGoal, c.Funding.Goal)
		}
	}

	owners := make([]model.OwnerStats, 0, len(byOwner))
	for _, row := range byOwner {
		owners = append(owners, *row)
	}
	sort.Slice(owners, func(i, j int) bool {
		if c := owners[i].TotalRaised.Cmp(owners[j].TotalRaised); c != 0 {
			return c > 0
		}
		return owners[i].Owner < owners[j].Owner
	})

	return owners
}
