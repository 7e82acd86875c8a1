package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/smartthings"
)

func newSmartthingsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "smartthings",
		Short: "List SmartThings devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			client := smartthings.NewClient(cfg.SmartThings.BaseURL, cfg.SmartThings.Token)

			start := time.Now()
			devices, err := client.Devices(cmd.Context())
			recordCall(cfg, "smartthings", "devices", start, err)
			if err != nil {
				return err
			}

			for _, d := range devices {
				name := d.Label
				if name == "" {
					name = d.Name
				}
				fmt.Println(name)
				fmt.Println(d.DeviceID)
				fmt.Println(strings.Join(d.Capabilities, ", "))
				fmt.Println("-------------------------")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
