package gram

import (
	"context"
	"strconv"

	"resty.dev/v3"

	"gramflow/internal/core"
)

// ProfileUpdate carries the editable profile fields; nil means "leave as is".
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

func (c *Client) MyProfile(ctx context.Context) (core.UserProfile, error) {
	return c.profile(ctx, "users.me", "/users/me")
}

func (c *Client) Profile(ctx context.Context, userID string) (core.UserProfile, error) {
	return c.profile(ctx, "users.get", "/users/"+userID)
}

func (c *Client) profile(ctx context.Context, op, path string) (core.UserProfile, error) {
	res, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&profileResponse{}).Get(path)
	})
	if err != nil {
		return core.UserProfile{}, err
	}

	return toProfile(*res.Result().(*profileResponse)), nil
}

func (c *Client) UpdateMyProfile(ctx context.Context, update ProfileUpdate) (core.UserProfile, error) {
	res, err := c.do(ctx, "users.update", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(update).SetResult(&profileResponse{}).Put("/users/me")
	})
	if err != nil {
		return core.UserProfile{}, err
	}

	return toProfile(*res.Result().(*profileResponse)), nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]core.UserProfile, error) {
	res, err := c.do(ctx, "users.search", func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParam("query", query).
			SetResult(&[]profileResponse{}).
			Get("/users/search")
	})
	if err != nil {
		return nil, err
	}

	return toProfiles(*res.Result().(*[]profileResponse)), nil
}

func (c *Client) Followers(ctx context.Context, userID string, offset, limit int) ([]core.UserProfile, error) {
	return c.relations(ctx, "users.followers", "/users/"+userID+"/followers", offset, limit)
}

func (c *Client) Following(ctx context.Context, userID string, offset, limit int) ([]core.UserProfile, error) {
	return c.relations(ctx, "users.following", "/users/"+userID+"/following", offset, limit)
}

func (c *Client) relations(ctx context.Context, op, path string, offset, limit int) ([]core.UserProfile, error) {
	res, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParams(map[string]string{
				"offset": strconv.Itoa(offset),
				"limit":  strconv.Itoa(limit),
			}).
			SetResult(&[]profileResponse{}).
			Get(path)
	})
	if err != nil {
		return nil, err
	}

	return toProfiles(*res.Result().(*[]profileResponse)), nil
}
