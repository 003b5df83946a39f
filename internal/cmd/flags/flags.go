package flags

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var Interval = &cli.IntFlag{
	Name:    "interval",
	Aliases: []string{"i"},
	Usage:   "Home feed poll interval in seconds",
	Value:   30,
	Sources: cli.EnvVars("WATCH_INTERVAL"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Address of the metrics endpoint",
	Value:   ":9091",
	Sources: cli.EnvVars("METRICS_ADDR"),
}
