// Package social caches feed, comment, and profile state and keeps every
// denormalized copy of a post in lockstep. A post may sit in the home feed,
// the explore feed, the bookmarks, and a per-user cache at the same time;
// all mutation goes through one handler per action that walks all of them.
//
// Like and bookmark toggles are optimistic: the local mutation lands before
// the network call, and the exact inverse is applied if the call fails.
package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"gramflow/internal/core"
	"gramflow/internal/session"
	"gramflow/pkg/gram"
)

// Region names the store area an error belongs to, so a view can show the
// banner next to the control that caused it.
type Region string

const (
	RegionFeed    Region = "feed"
	RegionPost    Region = "post"
	RegionComment Region = "comment"
	RegionProfile Region = "profile"
)

const defaultPageSize = 20

var (
	ErrUnknownPost  = errors.New("post not present in any collection")
	ErrEmptyCaption = errors.New("caption must not be empty")
	ErrNoImage      = errors.New("image must be supplied")
	ErrEmptyComment = errors.New("comment must not be empty")
	ErrSelfFollow   = errors.New("cannot follow yourself")
)

type Store struct {
	Logger  *slog.Logger
	Client  *gram.Client
	Session *session.Store

	mu        sync.Mutex
	home      []core.Post
	explore   []core.Post
	bookmarks []core.Post
	userPosts map[string][]core.Post
	profiles  map[string]core.UserProfile
	comments  map[string][]core.Comment
	errs      map[Region]string
}

func (s *Store) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "social.Store")
	s.userPosts = map[string][]core.Post{}
	s.profiles = map[string]core.UserProfile{}
	s.comments = map[string][]core.Comment{}
	s.errs = map[Region]string{}

	return nil
}

// Feeds

func (s *Store) FetchHomeFeed(ctx context.Context) error {
	return s.fetchFeed(ctx, s.Client.HomeFeed, func(posts []core.Post) { s.home = posts })
}

func (s *Store) FetchExploreFeed(ctx context.Context) error {
	return s.fetchFeed(ctx, s.Client.ExploreFeed, func(posts []core.Post) { s.explore = posts })
}

func (s *Store) FetchBookmarks(ctx context.Context) error {
	return s.fetchFeed(ctx, s.Client.Bookmarks, func(posts []core.Post) { s.bookmarks = posts })
}

// fetchFeed replaces one named collection wholesale, preserving server
// order. On failure the previous snapshot stays untouched.
func (s *Store) fetchFeed(ctx context.Context, fetch func(context.Context, int, int) ([]core.Post, error), assign func([]core.Post)) error {
	posts, err := fetch(ctx, 1, defaultPageSize)
	if err != nil {
		s.setErr(RegionFeed, err)
		return err
	}

	s.mu.Lock()
	assign(posts)
	s.mu.Unlock()

	s.clearErr(RegionFeed)
	return nil
}

func (s *Store) FetchUserPosts(ctx context.Context, userID string) error {
	posts, err := s.Client.UserPosts(ctx, userID)
	if err != nil {
		s.setErr(RegionFeed, err)
		return err
	}

	s.mu.Lock()
	s.userPosts[userID] = posts
	s.mu.Unlock()

	s.clearErr(RegionFeed)
	return nil
}

// Posts

// FetchPost loads a single post into the author's per-user cache, so
// interaction handlers can find it even when no feed has been fetched yet.
func (s *Store) FetchPost(ctx context.Context, postID string) (core.Post, error) {
	post, err := s.Client.GetPost(ctx, postID)
	if err != nil {
		s.setErr(RegionPost, err)
		return core.Post{}, err
	}

	s.mu.Lock()
	cached := s.userPosts[post.AuthorID]
	replaced := false
	for i := range cached {
		if cached[i].ID == post.ID {
			cached[i] = post
			replaced = true
			break
		}
	}
	if !replaced {
		s.userPosts[post.AuthorID] = append(cached, post)
	}
	s.mu.Unlock()

	s.clearErr(RegionPost)
	return post, nil
}

// CreatePost uploads the image and prepends the new entry to the home feed
// head. Fetched entries keep their order; a failed upload mutates nothing.
func (s *Store) CreatePost(ctx context.Context, image io.Reader, filename, caption string) (core.Post, error) {
	if image == nil {
		s.setErr(RegionPost, ErrNoImage)
		return core.Post{}, ErrNoImage
	}
	if strings.TrimSpace(caption) == "" {
		s.setErr(RegionPost, ErrEmptyCaption)
		return core.Post{}, ErrEmptyCaption
	}

	post, err := s.Client.CreatePost(ctx, image, filename, caption)
	if err != nil {
		s.setErr(RegionPost, err)
		return core.Post{}, err
	}

	s.mu.Lock()
	s.home = append([]core.Post{post}, s.home...)
	s.mu.Unlock()

	s.clearErr(RegionPost)
	return post, nil
}

func (s *Store) UpdateCaption(ctx context.Context, postID, caption string) error {
	if strings.TrimSpace(caption) == "" {
		s.setErr(RegionPost, ErrEmptyCaption)
		return ErrEmptyCaption
	}

	updated, err := s.Client.UpdateCaption(ctx, postID, caption)
	if err != nil {
		s.setErr(RegionPost, err)
		return err
	}

	s.mu.Lock()
	s.eachCopy(postID, func(p *core.Post) { p.Caption = updated.Caption })
	s.mu.Unlock()

	s.clearErr(RegionPost)
	return nil
}

// DeletePost removes the entry from every collection that may contain it.
// The store only mutates after the single deletion call succeeds, so the
// removal is all-or-nothing.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	if err := s.Client.DeletePost(ctx, postID); err != nil {
		s.setErr(RegionPost, err)
		return err
	}

	keep := func(p core.Post, _ int) bool { return p.ID != postID }

	s.mu.Lock()
	s.home = lo.Filter(s.home, keep)
	s.explore = lo.Filter(s.explore, keep)
	s.bookmarks = lo.Filter(s.bookmarks, keep)
	for userID, posts := range s.userPosts {
		s.userPosts[userID] = lo.Filter(posts, keep)
	}
	delete(s.comments, postID)
	s.mu.Unlock()

	s.clearErr(RegionPost)
	return nil
}

// Interactions

// ToggleLike flips the viewer's like on a post, optimistically: the flag
// and the count move in every collection before the network call resolves,
// and move back if it fails.
func (s *Store) ToggleLike(ctx context.Context, postID string) error {
	s.mu.Lock()
	current, ok := s.findCopy(postID)
	if !ok {
		s.mu.Unlock()
		s.setErr(RegionPost, ErrUnknownPost)
		return ErrUnknownPost
	}
	target := !current.Liked
	s.applyLike(postID, target)
	s.mu.Unlock()

	var err error
	if target {
		err = s.Client.LikePost(ctx, postID)
	} else {
		err = s.Client.UnlikePost(ctx, postID)
	}
	if err != nil {
		s.mu.Lock()
		s.applyLike(postID, !target)
		s.mu.Unlock()
		s.setErr(RegionPost, err)
		return err
	}

	s.clearErr(RegionPost)
	return nil
}

// ToggleBookmark flips the bookmark flag everywhere; flipping to
// unbookmarked additionally drops the entry from the bookmarks collection
// (and only from there). Rollback restores the entry at its old position.
func (s *Store) ToggleBookmark(ctx context.Context, postID string) error {
	s.mu.Lock()
	current, ok := s.findCopy(postID)
	if !ok {
		s.mu.Unlock()
		s.setErr(RegionPost, ErrUnknownPost)
		return ErrUnknownPost
	}
	target := !current.Bookmarked

	s.eachCopy(postID, func(p *core.Post) { p.Bookmarked = target })

	var removed *core.Post
	removedAt := -1
	if !target {
		for i, p := range s.bookmarks {
			if p.ID == postID {
				entry := p
				removed, removedAt = &entry, i
				break
			}
		}
		if removed != nil {
			s.bookmarks = append(s.bookmarks[:removedAt], s.bookmarks[removedAt+1:]...)
		}
	}
	s.mu.Unlock()

	var err error
	if target {
		err = s.Client.BookmarkPost(ctx, postID)
	} else {
		err = s.Client.RemoveBookmark(ctx, postID)
	}
	if err != nil {
		s.mu.Lock()
		s.eachCopy(postID, func(p *core.Post) { p.Bookmarked = !target })
		if removed != nil {
			// The collection may have been refetched while the call was
			// in flight, so the remembered index can be stale. Re-insert
			// only if the entry is still gone, clamped to the current
			// length.
			present := lo.ContainsBy(s.bookmarks, func(p core.Post) bool { return p.ID == postID })
			if !present {
				at := min(removedAt, len(s.bookmarks))
				removed.Bookmarked = true
				s.bookmarks = append(s.bookmarks[:at], append([]core.Post{*removed}, s.bookmarks[at:]...)...)
			}
		}
		s.mu.Unlock()
		s.setErr(RegionPost, err)
		return err
	}

	s.clearErr(RegionPost)
	return nil
}

// Comments

// AddComment appends to the post's comment list and bumps the comment
// count on every copy of the post. Not optimistic: the caller keeps the
// text for retry on failure.
func (s *Store) AddComment(ctx context.Context, postID, text string) (core.Comment, error) {
	if strings.TrimSpace(text) == "" {
		s.setErr(RegionComment, ErrEmptyComment)
		return core.Comment{}, ErrEmptyComment
	}

	comment, err := s.Client.AddComment(ctx, postID, text)
	if err != nil {
		s.setErr(RegionComment, err)
		return core.Comment{}, err
	}

	s.mu.Lock()
	s.comments[postID] = append(s.comments[postID], comment)
	s.eachCopy(postID, func(p *core.Post) { p.CommentsCount++ })
	s.mu.Unlock()

	s.clearErr(RegionComment)
	return comment, nil
}

func (s *Store) FetchComments(ctx context.Context, postID string) error {
	comments, err := s.Client.Comments(ctx, postID, 0, 50)
	if err != nil {
		s.setErr(RegionComment, err)
		return err
	}

	s.mu.Lock()
	s.comments[postID] = comments
	s.mu.Unlock()

	s.clearErr(RegionComment)
	return nil
}

func (s *Store) UpdateComment(ctx context.Context, postID, commentID, text string) error {
	if strings.TrimSpace(text) == "" {
		s.setErr(RegionComment, ErrEmptyComment)
		return ErrEmptyComment
	}

	updated, err := s.Client.UpdateComment(ctx, commentID, text)
	if err != nil {
		s.setErr(RegionComment, err)
		return err
	}

	s.mu.Lock()
	for i, c := range s.comments[postID] {
		if c.ID == commentID {
			s.comments[postID][i].Text = updated.Text
		}
	}
	s.mu.Unlock()

	s.clearErr(RegionComment)
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := s.Client.DeleteComment(ctx, commentID); err != nil {
		s.setErr(RegionComment, err)
		return err
	}

	s.mu.Lock()
	before := len(s.comments[postID])
	s.comments[postID] = lo.Filter(s.comments[postID], func(c core.Comment, _ int) bool {
		return c.ID != commentID
	})
	if len(s.comments[postID]) < before {
		s.eachCopy(postID, func(p *core.Post) { p.CommentsCount-- })
	}
	s.mu.Unlock()

	s.clearErr(RegionComment)
	return nil
}

// Social graph

// Follow adjusts the cached profile only; feed membership is stale until
// the next feed fetch.
func (s *Store) Follow(ctx context.Context, userID string) error {
	return s.setFollowing(ctx, userID, true)
}

func (s *Store) Unfollow(ctx context.Context, userID string) error {
	return s.setFollowing(ctx, userID, false)
}

func (s *Store) setFollowing(ctx context.Context, userID string, following bool) error {
	if identity, ok := s.Session.Identity(); ok && identity.ID == userID {
		s.setErr(RegionProfile, ErrSelfFollow)
		return ErrSelfFollow
	}

	var err error
	if following {
		err = s.Client.Follow(ctx, userID)
	} else {
		err = s.Client.Unfollow(ctx, userID)
	}
	if err != nil {
		s.setErr(RegionProfile, err)
		return err
	}

	s.mu.Lock()
	if profile, ok := s.profiles[userID]; ok && profile.IsFollowing != following {
		profile.IsFollowing = following
		if following {
			profile.Followers++
		} else {
			profile.Followers--
		}
		s.profiles[userID] = profile
	}
	s.mu.Unlock()

	s.clearErr(RegionProfile)
	return nil
}

// Profiles

func (s *Store) FetchProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	profile, err := s.Client.Profile(ctx, userID)
	if err != nil {
		s.setErr(RegionProfile, err)
		return core.UserProfile{}, err
	}

	s.mu.Lock()
	s.profiles[profile.ID] = profile
	s.mu.Unlock()

	s.clearErr(RegionProfile)
	return profile, nil
}

// FetchRelations loads followers and following in parallel and joins both
// before returning.
func (s *Store) FetchRelations(ctx context.Context, userID string) (followers, following []core.UserProfile, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		followers, err = s.Client.Followers(ctx, userID, 0, 50)
		return err
	})
	g.Go(func() error {
		var err error
		following, err = s.Client.Following(ctx, userID, 0, 50)
		return err
	})

	if err = g.Wait(); err != nil {
		s.setErr(RegionProfile, err)
		return nil, nil, err
	}

	s.clearErr(RegionProfile)
	return followers, following, nil
}

// Snapshots. All return copies; callers never see live store slices.

func (s *Store) HomeFeed() []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Post(nil), s.home...)
}

func (s *Store) ExploreFeed() []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Post(nil), s.explore...)
}

func (s *Store) Bookmarks() []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Post(nil), s.bookmarks...)
}

func (s *Store) UserPosts(userID string) []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Post(nil), s.userPosts[userID]...)
}

func (s *Store) Comments(postID string) []core.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Comment(nil), s.comments[postID]...)
}

func (s *Store) Profile(userID string) (core.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	return profile, ok
}

// LastError reports the human-readable message of the most recent failure
// in a region, empty when the last operation there succeeded.
func (s *Store) LastError(region Region) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[region]
}

// Internals. Callers of eachCopy, findCopy and applyLike hold s.mu.

// eachCopy applies fn to every copy of the post across all collections.
func (s *Store) eachCopy(postID string, fn func(*core.Post)) {
	walk := func(posts []core.Post) {
		for i := range posts {
			if posts[i].ID == postID {
				fn(&posts[i])
			}
		}
	}

	walk(s.home)
	walk(s.explore)
	walk(s.bookmarks)
	for _, posts := range s.userPosts {
		walk(posts)
	}
}

func (s *Store) findCopy(postID string) (core.Post, bool) {
	var found core.Post
	ok := false
	s.eachCopy(postID, func(p *core.Post) {
		if !ok {
			found, ok = *p, true
		}
	})
	return found, ok
}

// applyLike moves copies that are not already in the target state, so an
// apply followed by its inverse is a no-op.
func (s *Store) applyLike(postID string, liked bool) {
	s.eachCopy(postID, func(p *core.Post) {
		if p.Liked == liked {
			return
		}
		p.Liked = liked
		if liked {
			p.Likes++
		} else {
			p.Likes--
		}
	})
}

func (s *Store) setErr(region Region, err error) {
	msg := err.Error()
	var apiErr *gram.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}

	s.mu.Lock()
	s.errs[region] = msg
	s.mu.Unlock()

	s.Logger.Debug("operation failed", "region", string(region), "error", err)
}

func (s *Store) clearErr(region Region) {
	s.mu.Lock()
	delete(s.errs, region)
	s.mu.Unlock()
}
