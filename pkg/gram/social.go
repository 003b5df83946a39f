package gram

import (
	"context"

	"resty.dev/v3"
)

func (c *Client) Follow(ctx context.Context, userID string) error {
	_, err := c.do(ctx, "social.follow", func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/social/follow/" + userID)
	})
	return err
}

func (c *Client) Unfollow(ctx context.Context, userID string) error {
	_, err := c.do(ctx, "social.unfollow", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/social/unfollow/" + userID)
	})
	return err
}

func (c *Client) IsFollowing(ctx context.Context, userID string) (bool, error) {
	type followingResponse struct {
		IsFollowing bool `json:"is_following"`
	}

	res, err := c.do(ctx, "social.is_following", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&followingResponse{}).Get("/social/is-following/" + userID)
	})
	if err != nil {
		return false, err
	}

	return res.Result().(*followingResponse).IsFollowing, nil
}
