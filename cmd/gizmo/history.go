package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/history"
)

func newHistoryCmd() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent API calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			l, err := history.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			entries, err := l.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				status := "ok"
				if !e.OK {
					status = "fail: " + e.Detail
				}
				fmt.Printf("%s  %-12s %-30s %4dms  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Service, e.Target, e.LatencyMs, status)
			}
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-service call summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			l, err := history.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			summaries, err := l.Summaries(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%-12s %8s %8s %12s\n", "SERVICE", "CALLS", "FAILS", "AVG LATENCY")
			for _, s := range summaries {
				fmt.Printf("%-12s %8d %8d %10dms\n", s.Service, s.Calls, s.Failures, s.AvgLatencyMs)
			}
			return nil
		},
	}

	discoveriesCmd := &cobra.Command{
		Use:   "discoveries",
		Short: "Show recent discovery runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			l, err := history.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			runs, err := l.Discoveries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, run := range runs {
				fmt.Printf("%s  %d device(s) in %dms  %s\n",
					run.CreatedAt.Format("2006-01-02 15:04:05"),
					len(run.Devices), run.DurationMs, strings.Join(run.Devices, ", "))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.AddCommand(statsCmd, discoveriesCmd)
	return cmd
}
