package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/model"
)

// Method names a zero-argument view function on a campaign or factory contract.
type Method string

const (
	MethodName         Method = "name"
	MethodDescription  Method = "description"
	MethodGoal         Method = "goal"
	MethodBalance      Method = "getContractBalance"
	MethodAllCampaigns Method = "getAllCampaigns"
)

// Result is the settled outcome of one contract read.
// Value is nil unless Status is model.ReadLoaded.
type Result struct {
	Value  any
	Status model.ReadStatus
	Err    error
}

// Reader is the read-only contract accessor the rest of crowdscope depends on.
// Implementations must honor ctx cancellation and never panic on bad data;
// failures are reported as a ReadErrored result.
type Reader interface {
	Read(ctx context.Context, address common.Address, method Method) Result
}

// CampaignRecord is one entry of the factory's getAllCampaigns() array.
// Field names match the ABI tuple components.
type CampaignRecord struct {
	CampaignAddress common.Address
	Owner           common.Address
	Name            string
}

// Info describes the connected network.
type Info struct {
	ChainID     *big.Int
	BlockNumber uint64
}

var networkNames = map[uint64]string{
	1:        "ethereum",
	10:       "optimism",
	137:      "polygon",
	8453:     "base",
	42161:    "arbitrum",
	84532:    "base-sepolia",
	11155111: "sepolia",
}

// NetworkName returns a short label for a chain ID, or "chain-<id>".
func NetworkName(id *big.Int) string {
	if id == nil {
		return "unknown"
	}
	if id.IsUint64() {
		if name, ok := networkNames[id.Uint64()]; ok {
			return name
		}
	}
	return "chain-" + id.String()
}

// ParseAddress validates and parses a hex contract address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, &AddressError{Input: s}
	}
	return common.HexToAddress(s), nil
}

// AddressError reports a malformed contract address.
type AddressError struct {
	Input string
}

func (e *AddressError) Error() string {
	if e.Input == "" {
		return "chain: empty contract address"
	}
	return "chain: invalid contract address " + `"` + e.Input + `"`
}
