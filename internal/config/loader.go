package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a string ("90s", "24h") in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	CatalogURL    string   `json:"catalog_url" yaml:"catalog_url" toml:"catalog_url"`
	APIKey        string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	StyleSheetURL string   `json:"stylesheet_url" yaml:"stylesheet_url" toml:"stylesheet_url"`
	CatalogTTL    Duration `json:"catalog_ttl" yaml:"catalog_ttl" toml:"catalog_ttl"`
	FetchTimeout  Duration `json:"fetch_timeout" yaml:"fetch_timeout" toml:"fetch_timeout"`

	MaxActive   int      `json:"max_active" yaml:"max_active" toml:"max_active"`
	LoadTimeout Duration `json:"load_timeout" yaml:"load_timeout" toml:"load_timeout"`

	BinaryCacheTTL     Duration `json:"binary_cache_ttl" yaml:"binary_cache_ttl" toml:"binary_cache_ttl"`
	BinaryCacheEntries int      `json:"binary_cache_entries" yaml:"binary_cache_entries" toml:"binary_cache_entries"`

	MaxResources   int      `json:"max_resources" yaml:"max_resources" toml:"max_resources"`
	ResourceMaxAge Duration `json:"resource_max_age" yaml:"resource_max_age" toml:"resource_max_age"`
	SweepInterval  Duration `json:"sweep_interval" yaml:"sweep_interval" toml:"sweep_interval"`

	RecentPath     string   `json:"recent_path" yaml:"recent_path" toml:"recent_path"`
	MaxRecent      int      `json:"max_recent" yaml:"max_recent" toml:"max_recent"`
	StaticFamilies []string `json:"static_families" yaml:"static_families" toml:"static_families"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
