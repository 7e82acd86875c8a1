package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DBPath != "gizmo.db" {
		t.Errorf("expected gizmo.db, got %s", cfg.DBPath)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.SWAPI.BaseURL != "https://swapi.dev/api" {
		t.Errorf("unexpected swapi base url %s", cfg.SWAPI.BaseURL)
	}
	if cfg.SWAPI.Timeout != 10*time.Second {
		t.Errorf("expected 10s swapi timeout, got %v", cfg.SWAPI.Timeout)
	}
	if cfg.Discovery.Timeout != 5*time.Second {
		t.Errorf("expected 5s discovery timeout, got %v", cfg.Discovery.Timeout)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_WEATHER_KEY", "wk-test-123")

	content := `
db_path: "test.db"
cache:
  enabled: true
  persistent: true
  ttl: 30m
swapi:
  base_url: "http://localhost:9000/api"
  timeout: 3s
discovery:
  timeout: 2s
roku:
  address: "192.168.0.8"
weather:
  access_key: ${TEST_WEATHER_KEY}
github:
  token: gh-token
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DBPath != "test.db" {
		t.Errorf("expected test.db, got %s", cfg.DBPath)
	}
	if !cfg.Cache.Persistent {
		t.Error("expected persistent cache")
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.SWAPI.BaseURL != "http://localhost:9000/api" {
		t.Errorf("unexpected swapi base url %s", cfg.SWAPI.BaseURL)
	}
	if cfg.Weather.AccessKey != "wk-test-123" {
		t.Errorf("env var not expanded: got %s", cfg.Weather.AccessKey)
	}
	if cfg.Roku.Address != "192.168.0.8" {
		t.Errorf("unexpected roku address %s", cfg.Roku.Address)
	}
	// Unset fields keep their defaults.
	if cfg.Weather.ZipURL != "http://ip-api.com/json" {
		t.Errorf("expected default zip url, got %s", cfg.Weather.ZipURL)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}
