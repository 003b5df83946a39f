// Package watch polls the home feed and logs posts it has not seen
// before. It is the long-running mode of the client, mostly useful for
// keeping the metrics endpoint warm and for demoing the stores.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gramflow/internal/config"
	"gramflow/internal/session"
	"gramflow/internal/social"
	"gramflow/pkg/gram"
	"gramflow/pkg/retry"
)

type Watcher struct {
	Logger  *slog.Logger
	Config  *config.Config
	Session *session.Store
	Social  *social.Store

	seen map[string]struct{}
}

func (w *Watcher) Init(_ context.Context) error {
	w.Logger = w.Logger.With("component", "watch.Watcher")
	w.seen = map[string]struct{}{}

	return nil
}

func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.Session.FetchIdentity(ctx); err != nil {
		return err
	}
	if w.Session.State() != session.StateAuthenticated {
		return errors.New("not logged in, run `gramflow login` first")
	}

	interval := time.Duration(w.Config.IntervalSeconds) * time.Second

	w.Logger.Info("watching home feed", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.poll(ctx); err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				// Shutdown, not a failure.
				return nil
			case errors.Is(err, gram.ErrSessionExpired):
				return err
			default:
				w.Logger.Warn("poll failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	err := retry.Do(ctx, 3, time.Second, func() error {
		return w.Social.FetchHomeFeed(ctx)
	})
	if err != nil {
		return err
	}

	for _, post := range w.Social.HomeFeed() {
		if _, ok := w.seen[post.ID]; ok {
			continue
		}
		w.seen[post.ID] = struct{}{}
		w.Logger.Info("new post", "id", post.ID, "author", post.AuthorName, "caption", post.Caption)
	}

	return nil
}
