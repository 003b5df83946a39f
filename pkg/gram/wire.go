package gram

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"

	"gramflow/internal/core"
)

// Wire shapes, snake_case as the backend sends them. Numeric ids become
// string ids on the domain side.

type authorResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type postResponse struct {
	ID            int64          `json:"id"`
	AuthorID      int64          `json:"author_id"`
	Author        authorResponse `json:"author"`
	ImageURL      string         `json:"image_url"`
	Caption       string         `json:"caption"`
	CreatedAt     time.Time      `json:"created_at"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	IsLiked       bool           `json:"is_liked"`
	IsBookmarked  bool           `json:"is_bookmarked"`
}

type commentResponse struct {
	ID        int64          `json:"id"`
	PostID    int64          `json:"post_id"`
	AuthorID  int64          `json:"author_id"`
	Author    authorResponse `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

type profileResponse struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
	Bio            string `json:"bio"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	PostsCount     int    `json:"posts_count"`
	IsFollowing    bool   `json:"is_following"`
}

type identityResponse struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	ProfilePicture string     `json:"profile_picture"`
	Bio            string     `json:"bio"`
	GoogleID       string     `json:"google_id"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// avatarOr falls back to a generated avatar, same generator and seed the
// backend-less views use.
func avatarOr(picture, name string) string {
	if picture != "" {
		return picture
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", url.QueryEscape(name))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toPost(p postResponse) core.Post {
	return core.Post{
		ID:            itoa(p.ID),
		AuthorID:      itoa(p.AuthorID),
		AuthorName:    p.Author.Name,
		AuthorAvatar:  avatarOr(p.Author.ProfilePicture, p.Author.Name),
		ImageURL:      p.ImageURL,
		Caption:       p.Caption,
		Likes:         p.LikesCount,
		CommentsCount: p.CommentsCount,
		Timestamp:     p.CreatedAt.UnixMilli(),
		Liked:         p.IsLiked,
		Bookmarked:    p.IsBookmarked,
	}
}

func toPosts(posts []postResponse) []core.Post {
	return lo.Map(posts, func(p postResponse, _ int) core.Post {
		return toPost(p)
	})
}

func toComment(c commentResponse) core.Comment {
	return core.Comment{
		ID:           itoa(c.ID),
		AuthorID:     itoa(c.AuthorID),
		AuthorName:   c.Author.Name,
		AuthorAvatar: avatarOr(c.Author.ProfilePicture, c.Author.Name),
		Text:         c.Content,
		Timestamp:    c.CreatedAt.UnixMilli(),
	}
}

func toProfile(p profileResponse) core.UserProfile {
	return core.UserProfile{
		ID:          itoa(p.ID),
		Name:        p.Name,
		FullName:    p.Name,
		Avatar:      avatarOr(p.ProfilePicture, p.Name),
		Bio:         p.Bio,
		Followers:   p.FollowersCount,
		Following:   p.FollowingCount,
		Posts:       p.PostsCount,
		IsFollowing: p.IsFollowing,
	}
}

func toProfiles(profiles []profileResponse) []core.UserProfile {
	return lo.Map(profiles, func(p profileResponse, _ int) core.UserProfile {
		return toProfile(p)
	})
}

func toIdentity(u identityResponse) core.Identity {
	identity := core.Identity{
		ID:        itoa(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    avatarOr(u.ProfilePicture, u.Name),
		Bio:       u.Bio,
		GoogleID:  u.GoogleID,
		Active:    u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.UpdatedAt != nil {
		identity.UpdatedAt = *u.UpdatedAt
	}
	return identity
}
