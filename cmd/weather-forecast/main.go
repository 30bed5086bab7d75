package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "weather-forecast"

func main() {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Hourly point forecasts for coordinate lists",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newFetchCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
