// Package gram is a typed client for the gramflow backend API. It is the
// single chokepoint for outbound HTTP: it injects the bearer token on every
// request, retries a request exactly once after refreshing an expired access
// token, and normalizes backend error payloads into flat messages.
package gram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
	"resty.dev/v3"

	"gramflow/internal/core"
)

var (
	// ErrSessionExpired means the access token is gone for good: the
	// refresh either failed or was impossible. Stored credentials are
	// already cleared when this is returned.
	ErrSessionExpired = errors.New("session expired")
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gramflow_api_requests_total",
		Help: "Outbound API requests by operation and status class.",
	}, []string{"op", "status"})

	tokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gramflow_token_refreshes_total",
		Help: "Access token refresh attempts by outcome.",
	}, []string{"outcome"})

	sessionExpiries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gramflow_session_expiries_total",
		Help: "Times the client gave up on a session and cleared credentials.",
	})
)

type Client struct {
	Logger *slog.Logger
	Config *core.Config
	Creds  core.CredentialStore

	client  *resty.Client
	refresh singleflight.Group

	onSessionExpired func()
}

func (c *Client) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "gram.Client")

	c.client = resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		DialerKeepAlive:       30 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	})
	c.client.SetBaseURL(c.Config.APIBaseURL)

	return nil
}

func (c *Client) Shutdown(_ context.Context) error {
	return c.client.Close()
}

// OnSessionExpired registers the side effect fired when the session dies
// outside an explicit logout. The session store uses it to fall back to
// the anonymous state; a UI would navigate to the login view.
func (c *Client) OnSessionExpired(fn func()) {
	c.onSessionExpired = fn
}

// r builds a request with the current access token attached, if any.
func (c *Client) r(ctx context.Context) *resty.Request {
	req := c.client.R().WithContext(ctx)

	pair, err := c.Creds.Load()
	if err != nil {
		c.Logger.Warn("cannot load credentials", "error", err)
		return req
	}
	if pair.Access != "" {
		req.SetAuthToken(pair.Access)
	}

	return req
}

// plain builds a request without credentials, for the login and refresh
// exchanges themselves.
func (c *Client) plain(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

// do sends a request and applies the auth contract: a 401 triggers one
// shared token refresh and one replay of the request with the new token.
// Any second 401, or a failed refresh, ends the session. All other error
// statuses pass through as *APIError.
func (c *Client) do(ctx context.Context, op string, send func(r *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	res, err := send(c.r(ctx))
	if err != nil {
		apiRequests.WithLabelValues(op, "transport").Inc()
		return nil, err
	}

	if res.StatusCode() == http.StatusUnauthorized {
		if err = c.refreshAccessToken(ctx); err != nil {
			apiRequests.WithLabelValues(op, statusClass(res)).Inc()
			c.expireSession()
			return nil, err
		}

		res, err = send(c.r(ctx))
		if err != nil {
			apiRequests.WithLabelValues(op, "transport").Inc()
			return nil, err
		}
		if res.StatusCode() == http.StatusUnauthorized {
			apiRequests.WithLabelValues(op, statusClass(res)).Inc()
			c.expireSession()
			return nil, ErrSessionExpired
		}
	}

	apiRequests.WithLabelValues(op, statusClass(res)).Inc()

	if res.IsError() {
		return nil, newAPIError(res)
	}

	return res, nil
}

// refreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers share a single in-flight exchange, so a burst of 401s
// causes one refresh call, not one per request.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (any, error) {
		pair, err := c.Creds.Load()
		if err != nil {
			return nil, err
		}
		if pair.Refresh == "" {
			tokenRefreshes.WithLabelValues("missing").Inc()
			return nil, ErrSessionExpired
		}

		type refreshResponse struct {
			AccessToken string `json:"access_token"`
		}

		res, err := c.plain(ctx).
			SetBody(map[string]string{"refresh_token": pair.Refresh}).
			SetResult(&refreshResponse{}).
			Post("/auth/refresh")
		if err != nil {
			tokenRefreshes.WithLabelValues("error").Inc()
			return nil, err
		}
		if res.IsError() {
			tokenRefreshes.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: %s", ErrSessionExpired, newAPIError(res).Message)
		}

		pair.Access = res.Result().(*refreshResponse).AccessToken
		if err = c.Creds.Store(pair); err != nil {
			return nil, err
		}

		tokenRefreshes.WithLabelValues("ok").Inc()
		c.Logger.Debug("access token refreshed")
		return nil, nil
	})

	return err
}

func (c *Client) expireSession() {
	sessionExpiries.Inc()

	if err := c.Creds.Clear(); err != nil {
		c.Logger.Error("cannot clear credentials", "error", err)
	}
	c.Logger.Warn("session expired, credentials cleared")

	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

func statusClass(res *resty.Response) string {
	return fmt.Sprintf("%dxx", res.StatusCode()/100)
}
