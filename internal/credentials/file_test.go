package credentials_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gramflow/internal/core"
	"gramflow/internal/credentials"
)

func newStore(t *testing.T) *credentials.FileStore {
	t.Helper()

	store := &credentials.FileStore{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &core.Config{
			CredentialsFile: filepath.Join(t.TempDir(), "nested", "credentials.json"),
		},
	}
	require.NoError(t, store.Init(t.Context()))

	return store
}

func TestLoadWithoutStoreReturnsZeroPair(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	pair, err := store.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestStoreThenLoadRoundTrips(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Store(core.TokenPair{Access: "a-1", Refresh: "r-1"}))

	pair, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "a-1", pair.Access)
	require.Equal(t, "r-1", pair.Refresh)
}

func TestStoreOverwritesPreviousPair(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Store(core.TokenPair{Access: "a-1", Refresh: "r-1"}))
	require.NoError(t, store.Store(core.TokenPair{Access: "a-2", Refresh: "r-1"}))

	pair, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "a-2", pair.Access)
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Store(core.TokenPair{Access: "a-1", Refresh: "r-1"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	pair, err := store.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}
