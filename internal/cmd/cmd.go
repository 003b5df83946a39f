// Package cmd wires the CLI commands to the stores through pal.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"gramflow/internal/cmd/flags"
	"gramflow/internal/config"
	"gramflow/internal/core"
	"gramflow/internal/credentials"
	"gramflow/internal/session"
	"gramflow/internal/social"
	"gramflow/pkg/clicfg"
	"gramflow/pkg/gram"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "gramflow",
	Usage:   "Command-line client for the gramflow social backend",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(c.String("log-level")); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Flags: []cli.Flag{
		flags.LogLevel,
	},
	Commands: []*cli.Command{
		loginCmd,
		logoutCmd,
		whoamiCmd,
		feedCmd,
		postCmd,
		userCmd,
		watchCmd,
	},
}

func Run() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// baseServices is the dependency set every command needs: config,
// credential file, API client, session store, social store.
func baseServices() []pal.ServiceDef {
	return []pal.ServiceDef{
		pal.Provide(&core.Config{}),
		pal.Provide[core.CredentialStore](&credentials.FileStore{}),
		pal.Provide(&gram.Client{}),
		pal.Provide(&session.Store{}),
		pal.Provide(&social.Store{}),
	}
}

func run(ctx context.Context, c *cli.Command, services ...pal.ServiceDef) error {
	cfg := config.Config{}
	if err := clicfg.ParseFlags(c, &cfg); err != nil {
		return err
	}
	services = append(services, pal.Provide(&cfg))

	return pal.New(services...).
		InjectSlog().
		InitTimeout(5*time.Second).
		HealthCheckTimeout(1*time.Second).
		ShutdownTimeout(10*time.Second).
		Run(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// requireAuth resolves stored credentials into an identity and fails fast
// when there is none, so runners do not hit protected endpoints blind.
func requireAuth(ctx context.Context, s *session.Store) error {
	if _, err := s.FetchIdentity(ctx); err != nil {
		return err
	}
	if s.State() != session.StateAuthenticated {
		return errors.New("not logged in, run `gramflow login` first")
	}
	return nil
}
