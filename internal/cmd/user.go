package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"gramflow/internal/search"
	"gramflow/internal/session"
	"gramflow/internal/social"
	"gramflow/pkg/gram"
)

var errUserIDRequired = errors.New("user id argument required")

var userCmd = &cli.Command{
	Name:  "user",
	Usage: "Profiles, search, and the follow graph",
	Commands: []*cli.Command{
		userAction("show", "Show a profile with followers and following"),
		userAction("follow", "Follow a user"),
		userAction("unfollow", "Unfollow a user"),
		{
			Name:      "search",
			Usage:     "Search users by name",
			ArgsUsage: "<query>",
			Action: func(ctx context.Context, c *cli.Command) error {
				runner := &searchRunner{query: c.Args().First()}
				services := append(baseServices(), pal.Provide(&search.Searcher{}), pal.Provide(runner))
				return run(ctx, c, services...)
			},
		},
		{
			Name:  "update",
			Usage: "Update your own profile",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Usage: "New username"},
				&cli.StringFlag{Name: "full-name", Usage: "New full name"},
				&cli.StringFlag{Name: "bio", Usage: "New biography"},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				runner := &updateProfileRunner{}
				for flag, target := range map[string]**string{
					"username":  &runner.username,
					"full-name": &runner.fullName,
					"bio":       &runner.bio,
				} {
					if c.IsSet(flag) {
						value := c.String(flag)
						*target = &value
					}
				}
				return run(ctx, c, append(baseServices(), pal.Provide(runner))...)
			},
		},
	},
}

func userAction(name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<user-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			runner := &userRunner{action: name, userID: c.Args().First()}
			return run(ctx, c, append(baseServices(), pal.Provide(runner))...)
		},
	}
}

type userRunner struct {
	Logger  *slog.Logger
	Session *session.Store
	Social  *social.Store

	action string
	userID string
}

func (r *userRunner) Run(ctx context.Context) error {
	if r.userID == "" {
		return errUserIDRequired
	}
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	switch r.action {
	case "show":
		profile, err := r.Social.FetchProfile(ctx, r.userID)
		if err != nil {
			return err
		}
		pp.Println(profile)

		followers, following, err := r.Social.FetchRelations(ctx, r.userID)
		if err != nil {
			return err
		}
		fmt.Printf("followers (%d):\n", len(followers))
		for _, user := range followers {
			fmt.Printf("  %s  @%s\n", user.ID, user.Name)
		}
		fmt.Printf("following (%d):\n", len(following))
		for _, user := range following {
			fmt.Printf("  %s  @%s\n", user.ID, user.Name)
		}
		return nil

	case "follow":
		if _, err := r.Social.FetchProfile(ctx, r.userID); err != nil {
			return err
		}
		return r.Social.Follow(ctx, r.userID)

	case "unfollow":
		if _, err := r.Social.FetchProfile(ctx, r.userID); err != nil {
			return err
		}
		return r.Social.Unfollow(ctx, r.userID)
	}

	return fmt.Errorf("unknown user action: %s", r.action)
}

type searchRunner struct {
	Logger   *slog.Logger
	Session  *session.Store
	Searcher *search.Searcher

	query string
}

func (r *searchRunner) Run(ctx context.Context) error {
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	done := make(chan struct{}, 1)
	r.Searcher.OnUpdate = func() {
		select {
		case done <- struct{}{}:
		default:
		}
	}

	r.Searcher.Query(ctx, r.query)

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if msg := r.Searcher.Err(); msg != "" {
		return errors.New(msg)
	}
	for _, user := range r.Searcher.Results() {
		fmt.Printf("%s  @%s  %s\n", user.ID, user.Name, user.Bio)
	}
	return nil
}

type updateProfileRunner struct {
	Logger  *slog.Logger
	Session *session.Store
	Client  *gram.Client

	username *string
	fullName *string
	bio      *string
}

func (r *updateProfileRunner) Run(ctx context.Context) error {
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	profile, err := r.Client.UpdateMyProfile(ctx, gram.ProfileUpdate{
		Username: r.username,
		FullName: r.fullName,
		Bio:      r.bio,
	})
	if err != nil {
		return err
	}

	pp.Println(profile)
	return nil
}
