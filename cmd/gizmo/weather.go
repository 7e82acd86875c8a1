package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/natejswenson/gizmo/pkg/weather"
)

func newWeatherCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show the current temperature for this machine's location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			client := weather.NewClient(
				cfg.Weather.IPURL,
				cfg.Weather.ZipURL,
				cfg.Weather.WeatherURL,
				cfg.Weather.AccessKey,
			)

			start := time.Now()
			report, err := client.Lookup(cmd.Context())
			recordCall(cfg, "weather", "lookup", start, err)
			if err != nil {
				return err
			}

			fmt.Printf("Current temperature in %s is %d°F\n", report.Location, report.TemperatureF)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
