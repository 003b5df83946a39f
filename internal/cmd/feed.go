package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"gramflow/internal/core"
	"gramflow/internal/session"
	"gramflow/internal/social"
)

var feedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Fetch and print a feed",
	Commands: []*cli.Command{
		feedSubcommand("home", "Posts from people you follow"),
		feedSubcommand("explore", "Discovery posts"),
		feedSubcommand("bookmarks", "Your saved posts"),
	},
}

func feedSubcommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, c *cli.Command) error {
			services := append(baseServices(), pal.Provide(&feedRunner{which: name}))
			return run(ctx, c, services...)
		},
	}
}

type feedRunner struct {
	Logger  *slog.Logger
	Session *session.Store
	Social  *social.Store

	which string
}

func (r *feedRunner) Run(ctx context.Context) error {
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	var (
		err   error
		posts []core.Post
	)

	switch r.which {
	case "home":
		err = r.Social.FetchHomeFeed(ctx)
		posts = r.Social.HomeFeed()
	case "explore":
		err = r.Social.FetchExploreFeed(ctx)
		posts = r.Social.ExploreFeed()
	case "bookmarks":
		err = r.Social.FetchBookmarks(ctx)
		posts = r.Social.Bookmarks()
	}
	if err != nil {
		return err
	}

	for _, post := range posts {
		printPost(post)
	}
	return nil
}

func printPost(post core.Post) {
	marks := ""
	if post.Liked {
		marks += " liked"
	}
	if post.Bookmarked {
		marks += " saved"
	}
	fmt.Printf("%s  @%s  likes:%d comments:%d%s\n    %s\n", post.ID, post.AuthorName, post.Likes, post.CommentsCount, marks, post.Caption)
}
