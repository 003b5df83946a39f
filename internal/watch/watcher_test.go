package watch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"gramflow/internal/config"
	"gramflow/internal/core"
	"gramflow/internal/credentials"
	"gramflow/internal/session"
	"gramflow/internal/social"
	"gramflow/pkg/gram"
)

func newWatcher(t *testing.T, mux *http.ServeMux) *Watcher {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &core.Config{
		APIBaseURL:      srv.URL,
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
	}

	creds := &credentials.FileStore{Logger: logger, Config: cfg}
	require.NoError(t, creds.Init(t.Context()))
	require.NoError(t, creds.Store(core.TokenPair{Access: "tok", Refresh: "ref"}))

	client := &gram.Client{Logger: logger, Config: cfg, Creds: creds}
	require.NoError(t, client.Init(t.Context()))
	t.Cleanup(func() { client.Shutdown(t.Context()) }) //nolint:errcheck

	sess := &session.Store{Logger: logger, Client: client, Creds: creds}
	require.NoError(t, sess.Init(t.Context()))

	store := &social.Store{Logger: logger, Client: client, Session: sess}
	require.NoError(t, store.Init(t.Context()))

	watcher := &Watcher{
		Logger:  logger,
		Config:  &config.Config{IntervalSeconds: 1},
		Session: sess,
		Social:  store,
	}
	require.NoError(t, watcher.Init(t.Context()))

	return watcher
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestPollMarksEachPostSeenOnce(t *testing.T) {
	t.Parallel()

	var extra atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/feed/home", func(w http.ResponseWriter, _ *http.Request) {
		posts := []map[string]any{post(1), post(2)}
		if extra.Load() {
			posts = append([]map[string]any{post(3)}, posts...)
		}
		writeJSON(w, map[string]any{"posts": posts})
	})

	watcher := newWatcher(t, mux)

	require.NoError(t, watcher.poll(t.Context()))
	require.Len(t, watcher.seen, 2)

	require.NoError(t, watcher.poll(t.Context()))
	require.Len(t, watcher.seen, 2)

	extra.Store(true)
	require.NoError(t, watcher.poll(t.Context()))
	require.Len(t, watcher.seen, 3)
	require.Contains(t, watcher.seen, "3")
}

func TestRunReturnsNilWhenCancelledMidPoll(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"id":         7,
			"email":      "ada@example.com",
			"name":       "Ada",
			"google_id":  "g-7",
			"is_active":  true,
			"created_at": "2024-01-02T03:04:05Z",
		})
	})
	mux.HandleFunc("/feed/home", func(w http.ResponseWriter, _ *http.Request) {
		// Cancellation lands while the poll is retrying.
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "flaky"}`)) //nolint:errcheck
	})

	watcher := newWatcher(t, mux)

	require.NoError(t, watcher.Run(ctx))
}

func post(id int) map[string]any {
	return map[string]any{
		"id":             id,
		"author_id":      1,
		"author":         map[string]any{"id": 1, "name": "ada", "profile_picture": ""},
		"image_url":      "http://cdn/p.jpg",
		"caption":        "hi",
		"created_at":     "2024-01-02T03:04:05Z",
		"likes_count":    0,
		"comments_count": 0,
		"is_liked":       false,
		"is_bookmarked":  false,
	}
}
