package gram

import (
	"context"

	"resty.dev/v3"

	"gramflow/internal/core"
)

// Login exchanges an identity-provider token for an identity and a
// credential pair. It does not touch the credential store; that is the
// session store's call to make.
func (c *Client) Login(ctx context.Context, providerToken string) (core.Identity, core.TokenPair, error) {
	type loginResponse struct {
		User         identityResponse `json:"user"`
		AccessToken  string           `json:"access_token"`
		RefreshToken string           `json:"refresh_token"`
	}

	res, err := c.plain(ctx).
		SetBody(map[string]string{"token": providerToken}).
		SetResult(&loginResponse{}).
		Post("/auth/google/login")
	if err != nil {
		apiRequests.WithLabelValues("auth.login", "transport").Inc()
		return core.Identity{}, core.TokenPair{}, err
	}

	apiRequests.WithLabelValues("auth.login", statusClass(res)).Inc()
	if res.IsError() {
		return core.Identity{}, core.TokenPair{}, newAPIError(res)
	}

	out := res.Result().(*loginResponse)
	pair := core.TokenPair{Access: out.AccessToken, Refresh: out.RefreshToken}

	return toIdentity(out.User), pair, nil
}

// Me fetches the identity behind the current access token.
func (c *Client) Me(ctx context.Context) (core.Identity, error) {
	res, err := c.do(ctx, "auth.me", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&identityResponse{}).Get("/auth/me")
	})
	if err != nil {
		return core.Identity{}, err
	}

	return toIdentity(*res.Result().(*identityResponse)), nil
}

// Logout invalidates the session server-side. Best effort: the caller
// clears local credentials regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, "auth.logout", func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/auth/logout")
	})
	return err
}
