package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[chain]
factory_address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

[general]
workers = 3
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Chain.FactoryAddress != "0x5FbDB2315678afecb367f032d93F642f64180aa3" {
		t.Errorf("factory = %q", cfg.Chain.FactoryAddress)
	}
	if cfg.General.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.General.Workers)
	}
	if cfg.Chain.RPCURL != DefaultRPCURL {
		t.Errorf("rpc_url = %q, want default kept", cfg.Chain.RPCURL)
	}
	if cfg.Daemon.IntervalSec != 15 {
		t.Errorf("interval = %d, want default kept", cfg.Daemon.IntervalSec)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[chain\nrpc_url ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndLoad_EnvWins(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CROWDSCOPE_RPC_URL", "")
	t.Setenv("CROWDSCOPE_FACTORY", "")
	t.Setenv("CROWDSCOPE_THEME", "")
	t.Setenv("CROWDSCOPE_WORKERS", "")

	cfg := DefaultConfig()
	cfg.Chain.RPCURL = "http://file:8545"
	cfg.Appearance.Theme = "catppuccin-mocha"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Chain.RPCURL != "http://file:8545" {
		t.Errorf("rpc_url = %q, want file value", got.Chain.RPCURL)
	}

	t.Setenv("CROWDSCOPE_RPC_URL", "http://env:8545")
	t.Setenv("CROWDSCOPE_WORKERS", "12")
	got, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Chain.RPCURL != "http://env:8545" {
		t.Errorf("rpc_url = %q, want env value", got.Chain.RPCURL)
	}
	if got.General.Workers != 12 {
		t.Errorf("workers = %d, want 12", got.General.Workers)
	}
	if got.Appearance.Theme != "catppuccin-mocha" {
		t.Errorf("theme = %q, want file value when env unset", got.Appearance.Theme)
	}
}

func TestApplyEnv_BadWorkers(t *testing.T) {
	t.Setenv("CROWDSCOPE_WORKERS", "many")
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatal("expected error for non-numeric CROWDSCOPE_WORKERS")
	}
}

func TestIntervals(t *testing.T) {
	if got := (DaemonConfig{IntervalSec: 0}).Interval(); got != 2*time.Second {
		t.Errorf("Interval(0) = %v, want 2s floor", got)
	}
	if got := (DaemonConfig{IntervalSec: 60}).Interval(); got != time.Minute {
		t.Errorf("Interval(60) = %v", got)
	}
	if got := (ChainConfig{}).Timeout(); got != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s default", got)
	}
	if got := (TUIConfig{RefreshIntervalSec: 1}).RefreshInterval(); got != 5*time.Second {
		t.Errorf("RefreshInterval(1) = %v, want 5s floor", got)
	}
}

func TestLookupNetwork(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		chainID int64
		ok      bool
	}{
		{"sepolia", "sepolia", 11155111, true},
		{" Mainnet ", "ethereum", 1, true},
		{"base_sepolia", "base-sepolia", 84532, true},
		{"anvil", "local", 31337, true},
		{"goerli", "", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupNetwork(tt.in)
		if ok != tt.ok || got.Name != tt.want || got.ChainID != tt.chainID {
			t.Errorf("LookupNetwork(%q) = %+v, %v; want %s/%d, %v", tt.in, got, ok, tt.want, tt.chainID, tt.ok)
		}
	}
}

func TestNetworksIsCopy(t *testing.T) {
	n := Networks()
	n[0].Name = "mutated"
	if Networks()[0].Name == "mutated" {
		t.Fatal("Networks returned shared slice")
	}
}
