// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math/big"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a whole-number percentage.
func FormatPercent(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// FormatProgress formats a campaign's percentage, or "n/a" when either
// funding value is absent.
func FormatProgress(s model.FundingState) string {
	if !s.Complete() {
		return "n/a"
	}
	return FormatPercent(funding.Compute(s).Percentage)
}

// FormatDuration formats d at its two largest units, e.g. "1h 2m",
// "2m 5s" or "45s". Sub-second remainders are dropped.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return "0s"
	}

	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	rest := secs % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0 && rest > 0:
		return fmt.Sprintf("%dm %ds", mins, rest)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", rest)
}

// FormatAge formats a timestamp relative to now, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatEther renders a wei amount in ether with four decimals.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "n/a"
	}
	return decimal.NewFromBigInt(wei, -18).StringFixed(4) + " ETH"
}

// FormatDelta formats the change between two balances with a sign, using
// the compact amount labels.
func FormatDelta(current, previous *big.Int) string {
	if current == nil || previous == nil {
		return ""
	}
	delta := new(big.Int).Sub(current, previous)
	switch delta.Sign() {
	case 0:
		return "±$0"
	case 1:
		return "+" + funding.FormatAmount(delta)
	default:
		return "-" + funding.FormatAmount(delta.Neg(delta))
	}
}

// ShortAddress abbreviates a hex address to its first six and last four characters.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
