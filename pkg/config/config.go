package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all gizmo configuration.
type Config struct {
	DBPath      string            `yaml:"db_path"`
	Cache       CacheConfig       `yaml:"cache"`
	SWAPI       SWAPIConfig       `yaml:"swapi"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Roku        RokuConfig        `yaml:"roku"`
	Weather     WeatherConfig     `yaml:"weather"`
	GitHub      GitHubConfig      `yaml:"github"`
	SmartThings SmartThingsConfig `yaml:"smartthings"`
}

// CacheConfig controls the query cache. When Persistent is false the cache
// lives in memory for the life of one invocation; otherwise it is stored in
// the SQLite database at DBPath with the given TTL.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Persistent bool          `yaml:"persistent"`
	TTL        time.Duration `yaml:"ttl"`
}

// SWAPIConfig points at the Star Wars API.
type SWAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DiscoveryConfig controls SSDP discovery.
type DiscoveryConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// RokuConfig identifies the Roku device to control. When Address is empty
// the CLI falls back to SSDP discovery.
type RokuConfig struct {
	Address string `yaml:"address"`
}

// WeatherConfig holds the weather pipeline endpoints and credential.
type WeatherConfig struct {
	AccessKey  string `yaml:"access_key"`
	WeatherURL string `yaml:"weather_url"`
	ZipURL     string `yaml:"zip_url"`
	IPURL      string `yaml:"ip_url"`
}

// GitHubConfig holds the GitHub API credential.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// SmartThingsConfig holds the SmartThings API credential.
type SmartThingsConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DBPath: "gizmo.db",
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		SWAPI: SWAPIConfig{
			BaseURL: "https://swapi.dev/api",
			Timeout: 10 * time.Second,
		},
		Discovery: DiscoveryConfig{
			Timeout: 5 * time.Second,
		},
		Weather: WeatherConfig{
			WeatherURL: "http://api.weatherstack.com",
			ZipURL:     "http://ip-api.com/json",
			IPURL:      "https://api.ipify.org?format=json",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
