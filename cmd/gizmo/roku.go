package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/config"
	"github.com/natejswenson/gizmo/pkg/history"
	"github.com/natejswenson/gizmo/pkg/roku"
	"github.com/natejswenson/gizmo/pkg/ssdp"
)

func newRokuCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "roku",
		Short: "Discover and control Roku devices",
	}

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Find Roku devices on the local network via SSDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			start := time.Now()
			devices, err := ssdp.DiscoverRoku(cfg.Discovery.Timeout)
			if err != nil {
				return err
			}
			recordDiscovery(cfg, devices, time.Since(start))

			if len(devices) == 0 {
				fmt.Println("No Roku devices found on the network")
				return nil
			}
			for i, addr := range devices {
				fmt.Printf("Device %d: %s\n", i+1, addr)
			}
			return nil
		},
	}

	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "List channels installed on the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			client, err := rokuClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			apps, err := client.Apps(cmd.Context())
			recordCall(cfg, "roku", "query/apps", start, err)
			if err != nil {
				return err
			}
			for _, app := range apps {
				fmt.Printf("[%s] %s\n", app.ID, app.Name)
			}
			return nil
		},
	}

	launchCmd := &cobra.Command{
		Use:   "launch <app-id>",
		Short: "Launch a channel by app id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			client, err := rokuClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			err = client.Launch(cmd.Context(), args[0])
			recordCall(cfg, "roku", "launch/"+args[0], start, err)
			if err != nil {
				return err
			}
			fmt.Printf("Launched app %s\n", args[0])
			return nil
		},
	}

	homeCmd := &cobra.Command{
		Use:   "home",
		Short: "Navigate the device to the home screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			client, err := rokuClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			err = client.Home(cmd.Context())
			recordCall(cfg, "roku", "keypress/Home", start, err)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.AddCommand(discoverCmd, appsCmd, launchCmd, homeCmd)
	return cmd
}

// rokuClient resolves the device address from config, falling back to SSDP
// discovery when none is configured.
func rokuClient(ctx context.Context, cfg *config.Config) (*roku.Client, error) {
	addr := cfg.Roku.Address
	if addr == "" {
		devices, err := ssdp.DiscoverRoku(cfg.Discovery.Timeout)
		if err != nil {
			return nil, fmt.Errorf("discover roku: %w", err)
		}
		if len(devices) == 0 {
			return nil, fmt.Errorf("no roku device configured and none found on the network")
		}
		addr = devices[0]
	}
	return roku.NewClient(addr), nil
}

func recordDiscovery(cfg *config.Config, devices []string, elapsed time.Duration) {
	l, err := history.Open(cfg.DBPath)
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	defer func() { _ = l.Close() }()

	run := history.DiscoveryRun{
		Devices:    devices,
		DurationMs: elapsed.Milliseconds(),
	}
	if err := l.RecordDiscovery(context.Background(), run); err != nil {
		log.Printf("history: %v", err)
	}
}
