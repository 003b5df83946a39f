package core

import (
	"time"
)

// Post is a feed entry as the client caches it. The same post may appear
// by value in several collections at once (home, explore, bookmarks,
// per-user caches); mutations must be applied to every copy.
type Post struct {
	ID           string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string

	ImageURL string
	Caption  string

	Likes         int
	CommentsCount int

	Timestamp int64

	Liked      bool
	Bookmarked bool
}

// Comment belongs to exactly one post, kept in insertion order.
type Comment struct {
	ID           string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string

	Text      string
	Timestamp int64
}

// UserProfile is the per-user summary cached by the social store. It is
// deliberately not merged with Identity.
type UserProfile struct {
	ID       string
	Name     string
	FullName string
	Avatar   string
	Bio      string

	Followers int
	Following int
	Posts     int

	IsFollowing bool
}

// Identity is the authenticated account, owned by the session store.
type Identity struct {
	ID       string
	Email    string
	Name     string
	Avatar   string
	Bio      string
	GoogleID string
	Active   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenPair is the credential pair kept in durable storage. An empty
// Access means unauthenticated.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (p TokenPair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}
