package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"gramflow/internal/session"
)

var loginCmd = &cli.Command{
	Name:  "login",
	Usage: "Exchange a Google ID token for a gramflow session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "token",
			Usage:    "Google ID token",
			Required: true,
			Sources:  cli.EnvVars("GOOGLE_ID_TOKEN"),
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		services := append(baseServices(), pal.Provide(&loginRunner{token: c.String("token")}))
		return run(ctx, c, services...)
	},
}

var logoutCmd = &cli.Command{
	Name:  "logout",
	Usage: "End the session and drop stored credentials",
	Action: func(ctx context.Context, c *cli.Command) error {
		services := append(baseServices(), pal.Provide(&logoutRunner{}))
		return run(ctx, c, services...)
	},
}

var whoamiCmd = &cli.Command{
	Name:  "whoami",
	Usage: "Show the identity behind the stored credentials",
	Action: func(ctx context.Context, c *cli.Command) error {
		services := append(baseServices(), pal.Provide(&whoamiRunner{}))
		return run(ctx, c, services...)
	},
}

type loginRunner struct {
	Logger  *slog.Logger
	Session *session.Store

	token string
}

func (r *loginRunner) Run(ctx context.Context) error {
	identity, err := r.Session.Login(ctx, r.token)
	if err != nil {
		return err
	}

	fmt.Printf("logged in as %s <%s>\n", identity.Name, identity.Email)
	return nil
}

type logoutRunner struct {
	Logger  *slog.Logger
	Session *session.Store
}

func (r *logoutRunner) Run(ctx context.Context) error {
	if err := r.Session.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("logged out")
	return nil
}

type whoamiRunner struct {
	Logger  *slog.Logger
	Session *session.Store
}

func (r *whoamiRunner) Run(ctx context.Context) error {
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	identity, _ := r.Session.Identity()
	pp.Println(identity)
	return nil
}
