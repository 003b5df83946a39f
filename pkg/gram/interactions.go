package gram

import (
	"context"
	"strconv"

	"resty.dev/v3"

	"gramflow/internal/core"
)

func (c *Client) LikePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, "interactions.like", func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/interactions/posts/" + postID + "/like")
	})
	return err
}

func (c *Client) UnlikePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, "interactions.unlike", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/interactions/posts/" + postID + "/like")
	})
	return err
}

func (c *Client) BookmarkPost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, "interactions.bookmark", func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/interactions/posts/" + postID + "/bookmark")
	})
	return err
}

func (c *Client) RemoveBookmark(ctx context.Context, postID string) error {
	_, err := c.do(ctx, "interactions.unbookmark", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/interactions/posts/" + postID + "/bookmark")
	})
	return err
}

func (c *Client) AddComment(ctx context.Context, postID, text string) (core.Comment, error) {
	res, err := c.do(ctx, "interactions.comment", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetBody(map[string]string{"content": text}).
			SetResult(&commentResponse{}).
			Post("/interactions/posts/" + postID + "/comments")
	})
	if err != nil {
		return core.Comment{}, err
	}

	return toComment(*res.Result().(*commentResponse)), nil
}

// Comments returns a page of a post's comments in server order.
func (c *Client) Comments(ctx context.Context, postID string, offset, limit int) ([]core.Comment, error) {
	res, err := c.do(ctx, "interactions.comments", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParams(map[string]string{
				"offset": strconv.Itoa(offset),
				"limit":  strconv.Itoa(limit),
			}).
			SetResult(&[]commentResponse{}).
			Get("/interactions/posts/" + postID + "/comments")
	})
	if err != nil {
		return nil, err
	}

	comments := *res.Result().(*[]commentResponse)
	result := make([]core.Comment, 0, len(comments))
	for _, comment := range comments {
		result = append(result, toComment(comment))
	}
	return result, nil
}

func (c *Client) UpdateComment(ctx context.Context, commentID, text string) (core.Comment, error) {
	res, err := c.do(ctx, "interactions.comment_update", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetBody(map[string]string{"content": text}).
			SetResult(&commentResponse{}).
			Put("/interactions/comments/" + commentID)
	})
	if err != nil {
		return core.Comment{}, err
	}

	return toComment(*res.Result().(*commentResponse)), nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	_, err := c.do(ctx, "interactions.comment_delete", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/interactions/comments/" + commentID)
	})
	return err
}
