package session_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gramflow/internal/core"
	"gramflow/internal/credentials"
	"gramflow/internal/session"
	"gramflow/pkg/gram"
)

const loginOKJSON = `{
	"user": {
		"id": 7,
		"email": "ada@example.com",
		"name": "Ada",
		"google_id": "g-7",
		"is_active": true,
		"created_at": "2024-01-02T03:04:05Z"
	},
	"access_token": "a-1",
	"refresh_token": "r-1"
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body)) //nolint:errcheck
}

func newSession(t *testing.T, handler http.Handler) (*session.Store, core.CredentialStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &core.Config{
		APIBaseURL:      srv.URL,
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
	}

	creds := &credentials.FileStore{Logger: testLogger(), Config: cfg}
	require.NoError(t, creds.Init(t.Context()))

	client := &gram.Client{Logger: testLogger(), Config: cfg, Creds: creds}
	require.NoError(t, client.Init(t.Context()))
	t.Cleanup(func() { client.Shutdown(t.Context()) }) //nolint:errcheck

	store := &session.Store{Logger: testLogger(), Client: client, Creds: creds}
	require.NoError(t, store.Init(t.Context()))

	return store, creds
}

func TestLoginPersistsTokensAndAuthenticates(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, loginOKJSON)
	})

	store, creds := newSession(t, mux)

	identity, err := store.Login(t.Context(), "google-token")
	require.NoError(t, err)
	require.Equal(t, "Ada", identity.Name)
	require.Equal(t, session.StateAuthenticated, store.State())

	current, ok := store.Identity()
	require.True(t, ok)
	require.Equal(t, "7", current.ID)

	pair, err := creds.Load()
	require.NoError(t, err)
	require.Equal(t, "a-1", pair.Access)
	require.Equal(t, "r-1", pair.Refresh)
}

func TestLoginRejectionStaysAnonymous(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid provider token"}`)) //nolint:errcheck
	})

	store, creds := newSession(t, mux)

	_, err := store.Login(t.Context(), "bad-token")
	require.Error(t, err)
	require.Equal(t, session.StateAnonymous, store.State())
	require.NotEmpty(t, store.LastError())

	_, ok := store.Identity()
	require.False(t, ok)

	pair, err := creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestFetchIdentityResolvesStoredCredentials(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{
			"id": 7,
			"email": "ada@example.com",
			"name": "Ada",
			"google_id": "g-7",
			"is_active": true,
			"created_at": "2024-01-02T03:04:05Z"
		}`)
	})

	store, creds := newSession(t, mux)
	require.NoError(t, creds.Store(core.TokenPair{Access: "a-1", Refresh: "r-1"}))

	identity, err := store.FetchIdentity(t.Context())
	require.NoError(t, err)
	require.Equal(t, "Ada", identity.Name)
	require.Equal(t, session.StateAuthenticated, store.State())
}

func TestFetchIdentityWithoutCredentialsIsNoop(t *testing.T) {
	t.Parallel()

	store, _ := newSession(t, http.NewServeMux())

	_, err := store.FetchIdentity(t.Context())
	require.NoError(t, err)
	require.Equal(t, session.StateAnonymous, store.State())
}

func TestFetchIdentityClearsInvalidCredentials(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "token expired"}`)) //nolint:errcheck
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "refresh token revoked"}`)) //nolint:errcheck
	})

	store, creds := newSession(t, mux)
	require.NoError(t, creds.Store(core.TokenPair{Access: "stale", Refresh: "revoked"}))

	_, err := store.FetchIdentity(t.Context())
	require.Error(t, err)
	require.Equal(t, session.StateAnonymous, store.State())

	pair, err := creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestLogoutClearsLocalStateEvenWhenServerFails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, loginOKJSON)
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail": "backend down"}`)) //nolint:errcheck
	})

	store, creds := newSession(t, mux)

	_, err := store.Login(t.Context(), "google-token")
	require.NoError(t, err)

	require.NoError(t, store.Logout(t.Context()))
	require.Equal(t, session.StateAnonymous, store.State())

	_, ok := store.Identity()
	require.False(t, ok)

	pair, err := creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}
