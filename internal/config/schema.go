package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete engine configuration.
type Config struct {
	Version int `yaml:"version"`

	Server    ServerConfig      `yaml:"server"`
	Database  DatabaseConfig    `yaml:"database"`
	Pass      PassConfig        `yaml:"pass"`
	Adapters  AdaptersConfig    `yaml:"adapters"`
	Inventory InventoryConfig   `yaml:"inventory"`
	Gateways  []GatewayConfig   `yaml:"gateways,omitempty"`
	Vendors   map[string]string `yaml:"vendors,omitempty"`
	Log       LogConfig         `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// DatabaseConfig configures the snapshot store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PassConfig configures the reconciliation pass schedule and thresholds.
type PassConfig struct {
	// Interval between scheduled passes.
	Interval Duration `yaml:"interval"`
	// Deadline bounds one whole pass across all adapters.
	Deadline Duration `yaml:"deadline"`
	// ActivityThresholdSeconds is the last-seen age below which a device
	// counts as active.
	ActivityThresholdSeconds int `yaml:"activity_threshold_seconds"`
	// CacheTTL is how long the last-good graph may be served as a fallback.
	CacheTTL Duration `yaml:"cache_ttl"`
}

// AdapterConfig configures one upstream source adapter.
type AdapterConfig struct {
	Enabled *bool    `yaml:"enabled,omitempty"`
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
	Retries *int     `yaml:"retries,omitempty"`
}

// IsEnabled reports whether the adapter should run; adapters with a base
// URL default to enabled.
func (a AdapterConfig) IsEnabled() bool {
	if a.Enabled != nil {
		return *a.Enabled
	}
	return a.BaseURL != ""
}

// RetryCount returns the configured retry count or the given default.
func (a AdapterConfig) RetryCount(def int) int {
	if a.Retries != nil {
		return *a.Retries
	}
	return def
}

// AdaptersConfig holds the per-source adapter blocks.
type AdaptersConfig struct {
	Realtime   AdapterConfig `yaml:"realtime"`
	PortConfig AdapterConfig `yaml:"portconfig"`
	Lease      AdapterConfig `yaml:"lease"`
	ARP        AdapterConfig `yaml:"arp"`
}

// InventoryConfig locates the operator-maintained static inventory file.
type InventoryConfig struct {
	Path string `yaml:"path"`
}

// GatewayConfig describes an upstream gateway known to the operator.
type GatewayConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	IP   string `yaml:"ip,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}
