// Package config provides configuration management for lanmap.
//
// Config file locations (priority order):
//  1. $LANMAP_CONFIG
//  2. ./lanmap.yaml
//  3. $XDG_CONFIG_HOME/lanmap/config.yaml
//  4. ~/.config/lanmap/config.yaml
//  5. /etc/lanmap/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./lanmap.db"
	}
	if c.Pass.Interval <= 0 {
		c.Pass.Interval = Duration(time.Minute)
	}
	if c.Pass.Deadline <= 0 {
		c.Pass.Deadline = Duration(30 * time.Second)
	}
	if c.Pass.ActivityThresholdSeconds <= 0 {
		c.Pass.ActivityThresholdSeconds = 300
	}
	if c.Pass.CacheTTL <= 0 {
		c.Pass.CacheTTL = Duration(15 * time.Minute)
	}
	for _, a := range []*AdapterConfig{
		&c.Adapters.Realtime, &c.Adapters.PortConfig, &c.Adapters.Lease, &c.Adapters.ARP,
	} {
		if a.Timeout <= 0 {
			a.Timeout = Duration(10 * time.Second)
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if !c.Adapters.Realtime.IsEnabled() &&
		!c.Adapters.PortConfig.IsEnabled() &&
		!c.Adapters.Lease.IsEnabled() &&
		!c.Adapters.ARP.IsEnabled() &&
		c.Inventory.Path == "" {
		return fmt.Errorf("no adapters enabled and no static inventory configured")
	}

	seen := make(map[string]struct{}, len(c.Gateways))
	for _, gw := range c.Gateways {
		if gw.ID == "" {
			return fmt.Errorf("gateway entry missing id")
		}
		if _, dup := seen[gw.ID]; dup {
			return fmt.Errorf("duplicate gateway id %q", gw.ID)
		}
		seen[gw.ID] = struct{}{}
	}
	return nil
}
