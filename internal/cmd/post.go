package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"gramflow/internal/session"
	"gramflow/internal/social"
)

var errPostIDRequired = errors.New("post id argument required")

var postCmd = &cli.Command{
	Name:  "post",
	Usage: "Create, inspect, and interact with posts",
	Commands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Upload an image with a caption",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "image", Usage: "Path to the image file", Required: true},
				&cli.StringFlag{Name: "caption", Usage: "Post caption", Required: true},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				runner := &createPostRunner{image: c.String("image"), caption: c.String("caption")}
				return run(ctx, c, append(baseServices(), pal.Provide(runner))...)
			},
		},
		postAction("show", "Show a post and its comments"),
		postAction("like", "Toggle your like on a post"),
		postAction("bookmark", "Toggle your bookmark on a post"),
		postAction("delete", "Delete your post"),
		{
			Name:  "comment",
			Usage: "Comment on a post",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "text", Usage: "Comment text", Required: true},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				runner := &postRunner{action: "comment", postID: c.Args().First(), text: c.String("text")}
				return run(ctx, c, append(baseServices(), pal.Provide(runner))...)
			},
		},
		{
			Name:  "caption",
			Usage: "Edit a post's caption",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "caption", Usage: "New caption", Required: true},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				runner := &postRunner{action: "caption", postID: c.Args().First(), text: c.String("caption")}
				return run(ctx, c, append(baseServices(), pal.Provide(runner))...)
			},
		},
	},
}

func postAction(name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<post-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			runner := &postRunner{action: name, postID: c.Args().First()}
			return run(ctx, c, append(baseServices(), pal.Provide(runner))...)
		},
	}
}

type createPostRunner struct {
	Logger  *slog.Logger
	Session *session.Store
	Social  *social.Store

	image   string
	caption string
}

func (r *createPostRunner) Run(ctx context.Context) error {
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	file, err := os.Open(r.image)
	if err != nil {
		return err
	}
	defer file.Close()

	post, err := r.Social.CreatePost(ctx, file, filepath.Base(r.image), r.caption)
	if err != nil {
		return err
	}

	fmt.Printf("created post %s\n", post.ID)
	return nil
}

type postRunner struct {
	Logger  *slog.Logger
	Session *session.Store
	Social  *social.Store

	action string
	postID string
	text   string
}

func (r *postRunner) Run(ctx context.Context) error {
	if r.postID == "" {
		return errPostIDRequired
	}
	if err := requireAuth(ctx, r.Session); err != nil {
		return err
	}

	switch r.action {
	case "show":
		post, err := r.Social.FetchPost(ctx, r.postID)
		if err != nil {
			return err
		}
		pp.Println(post)

		if err = r.Social.FetchComments(ctx, r.postID); err != nil {
			return err
		}
		for _, comment := range r.Social.Comments(r.postID) {
			fmt.Printf("  @%s: %s\n", comment.AuthorName, comment.Text)
		}
		return nil

	case "like":
		if _, err := r.Social.FetchPost(ctx, r.postID); err != nil {
			return err
		}
		return r.Social.ToggleLike(ctx, r.postID)

	case "bookmark":
		if _, err := r.Social.FetchPost(ctx, r.postID); err != nil {
			return err
		}
		return r.Social.ToggleBookmark(ctx, r.postID)

	case "comment":
		comment, err := r.Social.AddComment(ctx, r.postID, r.text)
		if err != nil {
			return err
		}
		fmt.Printf("comment %s added\n", comment.ID)
		return nil

	case "caption":
		return r.Social.UpdateCaption(ctx, r.postID, r.text)

	case "delete":
		return r.Social.DeletePost(ctx, r.postID)
	}

	return fmt.Errorf("unknown post action: %s", r.action)
}
