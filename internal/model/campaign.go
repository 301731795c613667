// Package model defines domain types for crowdscope campaigns and marketplace metrics.
package model

import (
	"math/big"
	"time"
)

// ReadStatus is the settlement state of one asynchronous contract read.
type ReadStatus int

const (
	ReadLoading ReadStatus = iota
	ReadLoaded
	ReadErrored
)

func (s ReadStatus) String() string {
	switch s {
	case ReadLoaded:
		return "loaded"
	case ReadErrored:
		return "errored"
	default:
		return "loading"
	}
}

// Settled reports whether the read is no longer in flight.
func (s ReadStatus) Settled() bool {
	return s != ReadLoading
}

// FundingState holds the raw on-chain goal and balance of one campaign.
// A nil field means the value is absent: not loaded yet, the call failed,
// or the contract returned nothing.
type FundingState struct {
	Goal    *big.Int
	Balance *big.Int
}

// Complete reports whether both values are present.
func (s FundingState) Complete() bool {
	return s.Goal != nil && s.Balance != nil
}

// FundingProgress is the display progress derived from a FundingState.
// Percentage is always within [0, 100].
type FundingProgress struct {
	Percentage    int  `json:"percentage"`
	IsGoalReached bool `json:"is_goal_reached"`
}

// CampaignStatus buckets a campaign for filtering and totals.
type CampaignStatus string

const (
	StatusFunded  CampaignStatus = "funded"
	StatusActive  CampaignStatus = "active"
	StatusUnknown CampaignStatus = "unknown"
)

// Campaign is one crowdfunding contract deployed by the factory.
type Campaign struct {
	Address     string
	Owner       string
	Name        string // as registered with the factory
	Description string

	Funding       FundingState
	GoalStatus    ReadStatus
	BalanceStatus ReadStatus

	FetchedAt time.Time
	Stale     bool // served from cache after a failed live read
}

// Settled reports whether both funding reads have finished, successfully or not.
func (c Campaign) Settled() bool {
	return c.GoalStatus.Settled() && c.BalanceStatus.Settled()
}

// DisplayName returns the campaign name or a placeholder.
func (c Campaign) DisplayName() string {
	if c.Name == "" {
		return "Untitled Campaign"
	}
	return c.Name
}

// DisplayDescription returns the description or a placeholder.
func (c Campaign) DisplayDescription() string {
	if c.Description == "" {
		return "No description available for this campaign."
	}
	return c.Description
}

// MarketplaceStats holds the top-level aggregate across all campaigns.
type MarketplaceStats struct {
	Campaigns int
	Funded    int
	Active    int
	Unknown   int

	// Sums over campaigns whose value is present.
	TotalRaised *big.Int
	TotalGoal   *big.Int

	// Progress of the summed balance against the summed goal, counting
	// only campaigns with both values present.
	Progress FundingProgress
}

// OwnerStats holds per-owner totals across that owner's campaigns.
type OwnerStats struct {
	Owner       string
	Campaigns   int
	Funded      int
	TotalRaised *big.Int
	TotalGoal   *big.Int
}
