package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
	"github.com/zhulik/pal/inspect"

	"gramflow/internal/cmd/flags"
	"gramflow/internal/metrics"
	"gramflow/internal/watch"
)

var watchCmd = &cli.Command{
	Name:  "watch",
	Usage: "Poll the home feed, log new posts, serve metrics",
	Flags: []cli.Flag{
		flags.Interval,
		flags.MetricsAddr,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		services := append(baseServices(),
			pal.Provide(&watch.Watcher{}),
			pal.Provide(&metrics.Server{}),
		)
		services = append(services, inspect.Provide())
		return run(ctx, c, services...)
	},
}
