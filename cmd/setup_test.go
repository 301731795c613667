package cmd

import "testing"

func TestMaskEndpoint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://eth-sepolia.g.alchemy.com/v2/abcdefghijklmnopqrstuvwxyz", "https://eth-sepolia.g.alchemy.com/v2/abcde...wxyz"},
		{"http://127.0.0.1:8545", "http://127.0.0.1:8545"},
		{"wss://node.example/", "wss://node.example"},
		{"ab", "****"},
	}
	for _, tt := range tests {
		if got := maskEndpoint(tt.in); got != tt.want {
			t.Errorf("maskEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
