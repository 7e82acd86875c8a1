package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/swapi"
)

func newSwapiCmd() *cobra.Command {
	var configPath string
	var id, page int
	var search string
	var noCache bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "swapi <resource>",
		Short: "Query the Star Wars API",
		Long: "Query the Star Wars API for people, planets, starships, vehicles,\n" +
			"species, or films, by id, search term, or page.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			resource, err := swapi.ParseResource(args[0])
			if err != nil {
				return err
			}

			// Flag presence matters: an explicit zero is still invalid.
			if cmd.Flags().Changed("id") && id <= 0 {
				return fmt.Errorf("resource id must be positive")
			}
			if cmd.Flags().Changed("page") && page <= 0 {
				return fmt.Errorf("page must be positive")
			}

			q := swapi.NewQuery(resource)
			q.ID = id
			q.Search = search
			q.Page = page
			q.UseCache = cfg.Cache.Enabled && !noCache
			if cfg.SWAPI.Timeout > 0 {
				q.Timeout = cfg.SWAPI.Timeout
			}
			if timeout > 0 {
				q.Timeout = timeout
			}

			cache, closeCache, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			client := swapi.NewClient(cfg.SWAPI.BaseURL, cache)

			start := time.Now()
			res, err := client.Fetch(cmd.Context(), q)
			recordCall(cfg, "swapi", q.CacheKey(), start, err)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if res.Record != nil {
				return enc.Encode(res.Record)
			}
			return enc.Encode(res.List)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().IntVar(&id, "id", 0, "fetch a single resource by id")
	cmd.Flags().StringVar(&search, "search", "", "search term (mutually exclusive with --id)")
	cmd.Flags().IntVar(&page, "page", 0, "page of results to fetch")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the query cache")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "request timeout (overrides config)")
	return cmd
}
