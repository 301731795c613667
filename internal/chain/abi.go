package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// crowdfundingJSON covers the view functions read from the factory
// (getAllCampaigns) and from each campaign (the rest).
const crowdfundingJSON = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"description","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"goal","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getContractBalance","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getAllCampaigns","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"campaignAddress","type":"address"},
     {"name":"owner","type":"address"},
     {"name":"name","type":"string"}
   ]}]}
]`

var crowdfundingABI = mustParseABI(crowdfundingJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("chain: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
