package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/cache/memory"
	cachesqlite "github.com/natejswenson/gizmo/pkg/cache/sqlite"
	"github.com/natejswenson/gizmo/pkg/config"
	"github.com/natejswenson/gizmo/pkg/history"
	"github.com/natejswenson/gizmo/pkg/swapi"
)

var version = "dev"

const defaultConfigPath = "gizmo.yaml"

func main() {
	root := &cobra.Command{
		Use:     "gizmo",
		Short:   "Gizmo — home-lab API toolkit",
		Version: version,
	}

	root.AddCommand(
		newSwapiCmd(),
		newRokuCmd(),
		newWeatherCmd(),
		newGithubCmd(),
		newSmartthingsCmd(),
		newCacheCmd(),
		newHistoryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist. An explicit path must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openCache builds the query cache selected by config. The returned closer
// is always safe to call.
func openCache(cfg *config.Config) (swapi.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if cfg.Cache.Persistent {
		c, err := cachesqlite.New(cfg.DBPath, cfg.Cache.TTL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("init cache: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	}
	return memory.New(), func() {}, nil
}

// recordCall writes one call entry to the history log. Failures are logged,
// never surfaced.
func recordCall(cfg *config.Config, service, target string, start time.Time, callErr error) {
	l, err := history.Open(cfg.DBPath)
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	defer func() { _ = l.Close() }()

	e := history.Entry{
		Service:   service,
		Target:    target,
		OK:        callErr == nil,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if callErr != nil {
		e.Detail = callErr.Error()
	}
	if err := l.Record(context.Background(), e); err != nil {
		log.Printf("history: %v", err)
	}
}
