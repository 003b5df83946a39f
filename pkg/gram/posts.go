package gram

import (
	"bytes"
	"context"
	"io"

	"resty.dev/v3"

	"gramflow/internal/core"
)

// CreatePost uploads an image with a caption, multipart. The image is
// buffered up front: the 401 refresh-replay path re-sends the request, and
// a bare reader would already be drained by the first attempt.
func (c *Client) CreatePost(ctx context.Context, image io.Reader, filename, caption string) (core.Post, error) {
	data, err := io.ReadAll(image)
	if err != nil {
		return core.Post{}, err
	}

	res, err := c.do(ctx, "posts.create", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetFileReader("image", filename, bytes.NewReader(data)).
			SetFormData(map[string]string{"caption": caption}).
			SetResult(&postResponse{}).
			Post("/posts/")
	})
	if err != nil {
		return core.Post{}, err
	}

	return toPost(*res.Result().(*postResponse)), nil
}

func (c *Client) GetPost(ctx context.Context, postID string) (core.Post, error) {
	res, err := c.do(ctx, "posts.get", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&postResponse{}).Get("/posts/" + postID)
	})
	if err != nil {
		return core.Post{}, err
	}

	return toPost(*res.Result().(*postResponse)), nil
}

func (c *Client) UpdateCaption(ctx context.Context, postID, caption string) (core.Post, error) {
	res, err := c.do(ctx, "posts.update", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetBody(map[string]string{"caption": caption}).
			SetResult(&postResponse{}).
			Put("/posts/" + postID)
	})
	if err != nil {
		return core.Post{}, err
	}

	return toPost(*res.Result().(*postResponse)), nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, "posts.delete", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/posts/" + postID)
	})
	return err
}

// UserPosts returns every post authored by the given user.
func (c *Client) UserPosts(ctx context.Context, userID string) ([]core.Post, error) {
	res, err := c.do(ctx, "posts.user", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&feedResponse{}).Get("/posts/user/" + userID)
	})
	if err != nil {
		return nil, err
	}

	return toPosts(res.Result().(*feedResponse).Posts), nil
}
