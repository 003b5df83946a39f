package gram

import (
	"context"
	"strconv"

	"resty.dev/v3"

	"gramflow/internal/core"
)

const (
	feedHome      = "/feed/home"
	feedExplore   = "/feed/explore"
	feedBookmarks = "/feed/bookmarks"
)

type feedResponse struct {
	Posts []postResponse `json:"posts"`
}

func (c *Client) feed(ctx context.Context, op, path string, page, pageSize int) ([]core.Post, error) {
	res, err := c.do(ctx, op, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetQueryParams(map[string]string{
				"page":      strconv.Itoa(page),
				"page_size": strconv.Itoa(pageSize),
			}).
			SetResult(&feedResponse{}).
			Get(path)
	})
	if err != nil {
		return nil, err
	}

	return toPosts(res.Result().(*feedResponse).Posts), nil
}

// HomeFeed returns posts from followed users, server order preserved.
func (c *Client) HomeFeed(ctx context.Context, page, pageSize int) ([]core.Post, error) {
	return c.feed(ctx, "feed.home", feedHome, page, pageSize)
}

// ExploreFeed returns discovery posts from non-followed users.
func (c *Client) ExploreFeed(ctx context.Context, page, pageSize int) ([]core.Post, error) {
	return c.feed(ctx, "feed.explore", feedExplore, page, pageSize)
}

// Bookmarks returns the viewer's saved posts.
func (c *Client) Bookmarks(ctx context.Context, page, pageSize int) ([]core.Post, error) {
	return c.feed(ctx, "feed.bookmarks", feedBookmarks, page, pageSize)
}
