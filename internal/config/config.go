package config

// Config holds the CLI-level settings, filled from flags via clicfg.
type Config struct {
	LogLevel        string `flag:"log-level"`
	IntervalSeconds int    `flag:"interval"`
	MetricsAddr     string `flag:"metrics-addr"`
}
