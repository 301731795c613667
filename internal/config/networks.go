package config

import "strings"

// Network is a known chain preset used by setup and the status check.
type Network struct {
	Name    string
	ChainID int64
	RPCURL  string
}

var knownNetworks = []Network{
	{Name: "sepolia", ChainID: 11155111, RPCURL: "https://ethereum-sepolia-rpc.publicnode.com"},
	{Name: "base-sepolia", ChainID: 84532, RPCURL: "https://sepolia.base.org"},
	{Name: "ethereum", ChainID: 1, RPCURL: "https://ethereum-rpc.publicnode.com"},
	{Name: "holesky", ChainID: 17000, RPCURL: "https://ethereum-holesky-rpc.publicnode.com"},
	{Name: "local", ChainID: 31337, RPCURL: "http://127.0.0.1:8545"},
}

var networkAliases = map[string]string{
	"mainnet":      "ethereum",
	"eth":          "ethereum",
	"basesepolia":  "base-sepolia",
	"base_sepolia": "base-sepolia",
	"anvil":        "local",
	"hardhat":      "local",
	"localhost":    "local",
}

// NormalizeNetwork lowercases a network name and resolves aliases.
func NormalizeNetwork(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := networkAliases[n]; ok {
		return alias
	}
	return n
}

// LookupNetwork returns the preset for a network name or alias.
func LookupNetwork(name string) (Network, bool) {
	n := NormalizeNetwork(name)
	for _, net := range knownNetworks {
		if net.Name == n {
			return net, true
		}
	}
	return Network{}, false
}

// Networks returns all presets in display order.
func Networks() []Network {
	out := make([]Network, len(knownNetworks))
	copy(out, knownNetworks)
	return out
}
