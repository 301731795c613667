package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// DefaultRPCURL is a public Sepolia endpoint.
const DefaultRPCURL = "https://ethereum-sepolia-rpc.publicnode.com"

// Config holds all crowdscope configuration.
type Config struct {
	Chain      ChainConfig      `toml:"chain"`
	General    GeneralConfig    `toml:"general"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// ChainConfig holds RPC and contract settings.
type ChainConfig struct {
	RPCURL         string `toml:"rpc_url"`
	FactoryAddress string `toml:"factory_address,omitempty"`
	Network        string `toml:"network"`
	TimeoutSec     int    `toml:"timeout_sec"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Workers     int    `toml:"workers"`
	DefaultSort string `toml:"default_sort"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// envOverrides are read from the process environment and win over the file.
type envOverrides struct {
	RPCURL  string `env:"CROWDSCOPE_RPC_URL"`
	Factory string `env:"CROWDSCOPE_FACTORY"`
	Theme   string `env:"CROWDSCOPE_THEME"`
	Workers int    `env:"CROWDSCOPE_WORKERS"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:     DefaultRPCURL,
			Network:    "sepolia",
			TimeoutSec: 10,
		},
		General: GeneralConfig{
			Workers:     8,
			DefaultSort: "progress",
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8787",
			IntervalSec: 15,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "crowdscope")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crowdscope")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file and applies environment overrides,
// returning defaults if the file doesn't exist.
func Load() (Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a config file on top of the defaults. A missing file is
// not an error.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays CROWDSCOPE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.RPCURL != "" {
		cfg.Chain.RPCURL = ov.RPCURL
	}
	if ov.Factory != "" {
		cfg.Chain.FactoryAddress = ov.Factory
	}
	if ov.Theme != "" {
		cfg.Appearance.Theme = ov.Theme
	}
	if ov.Workers > 0 {
		cfg.General.Workers = ov.Workers
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Timeout returns the per-call RPC timeout.
func (c ChainConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// Interval returns the poll interval, never below 2s.
func (d DaemonConfig) Interval() time.Duration {
	iv := time.Duration(d.IntervalSec) * time.Second
	if iv < 2*time.Second {
		return 2 * time.Second
	}
	return iv
}

// RefreshInterval returns the dashboard auto-refresh period, never below 5s.
func (t TUIConfig) RefreshInterval() time.Duration {
	iv := time.Duration(t.RefreshIntervalSec) * time.Second
	if iv < 5*time.Second {
		return 5 * time.Second
	}
	return iv
}
