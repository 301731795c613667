// Package funding derives display progress and currency labels from
// on-chain campaign goal and balance readings.
//
// All arithmetic is done on big.Int so uint256 ledger values never lose
// precision. Floating point is only produced by Fraction, for bar widths.
package funding

import (
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/crowdscope/internal/model"
)

var (
	hundred  = big.NewInt(100)
	thousand = big.NewInt(1_000)
	million  = big.NewInt(1_000_000)
)

// ComputeProgress derives the clamped completion percentage and the
// funded flag from a campaign's goal and balance.
//
// A nil input, or a goal of zero, yields zero progress and not funded.
// The funded decision compares balance against goal directly, before
// clamping. The percentage is floor(balance*100/goal) capped at 100, so a
// campaign short of its goal never displays 100%.
func ComputeProgress(goal, balance *big.Int) model.FundingProgress {
	if goal == nil || balance == nil || goal.Sign() <= 0 {
		return model.FundingProgress{}
	}
	if balance.Sign() <= 0 {
		return model.FundingProgress{}
	}

	if balance.Cmp(goal) >= 0 {
		return model.FundingProgress{Percentage: 100, IsGoalReached: true}
	}

	// balance < goal, so the quotient is in [0, 99].
	pct := new(big.Int).Mul(balance, hundred)
	pct.Quo(pct, goal)
	return model.FundingProgress{Percentage: int(pct.Int64())}
}

// Compute is ComputeProgress over a FundingState.
func Compute(s model.FundingState) model.FundingProgress {
	return ComputeProgress(s.Goal, s.Balance)
}

// Classify buckets a funding state as funded, active, or unknown when
// either value is absent. A present zero goal counts as active.
func Classify(s model.FundingState) model.CampaignStatus {
	if !s.Complete() {
		return model.StatusUnknown
	}
	if Compute(s).IsGoalReached {
		return model.StatusFunded
	}
	return model.StatusActive
}

// StatusLabel returns the badge text for a progress value.
func StatusLabel(p model.FundingProgress) string {
	if p.IsGoalReached {
		return "Funded"
	}
	return "Active"
}

// Fraction returns balance/goal clamped to [0, 1] for drawing bars.
// Absent values and a zero goal give 0.
func Fraction(goal, balance *big.Int) float64 {
	if goal == nil || balance == nil || goal.Sign() <= 0 || balance.Sign() <= 0 {
		return 0
	}
	if balance.Cmp(goal) >= 0 {
		return 1
	}
	f, _ := new(big.Rat).SetFrac(balance, goal).Float64()
	return f
}

// FormatAmount renders a magnitude as an abbreviated dollar label.
//
//	nil       -> "$0"
//	500       -> "$500"
//	1000      -> "$1.0K"
//	1500000   -> "$1.5M"
//
// Thresholds are inclusive. The abbreviated branches keep one decimal,
// rounded half away from zero. Values below 1,000 are comma-grouped
// integers. There is no suffix above M.
func FormatAmount(value *big.Int) string {
	if value == nil {
		return "$0"
	}

	switch {
	case value.Cmp(million) >= 0:
		return "$" + decimal.NewFromBigInt(value, -6).StringFixed(1) + "M"
	case value.Cmp(thousand) >= 0:
		return "$" + decimal.NewFromBigInt(value, -3).StringFixed(1) + "K"
	default:
		return "$" + humanize.BigComma(value)
	}
}
