package main

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-forecast/internal/weather"
)

func newFetchCommand() *cobra.Command {
	var (
		location string
		days     int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch forecasts for one or more \"lat,lon\" locations and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unsupported output %q: use json or yaml", output)
			}

			// Logs go to stderr so stdout carries only the forecast document.
			a, err := bootstrap(prometheus.NewRegistry(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := checkDays(days, a.cfg.MaxDays); err != nil {
				return err
			}

			envelopes := a.service.ForecastMany(cmd.Context(), weather.ParseLocationString(location), days)

			if output == "yaml" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(envelopes)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(envelopes)
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", `";"-separated "lat,lon" pairs`)
	cmd.Flags().IntVarP(&days, "days", "d", weather.DefaultForecastDays, "forecast horizon in days (1-14)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

// checkDays rejects a horizon outside 1..maxDays (MAX_FORECAST_DAYS).
func checkDays(days, maxDays int) error {
	if days < 1 || days > maxDays {
		return fmt.Errorf("days must be between 1 and %d", maxDays)
	}
	return nil
}
