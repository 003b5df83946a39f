// Package credentials persists the token pair across restarts. It is the
// Go stand-in for the browser's localStorage: two opaque strings under
// fixed keys, surviving process restarts.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gramflow/internal/core"
)

// FileStore keeps the pair in a single JSON file, rewritten atomically.
type FileStore struct {
	Logger *slog.Logger
	Config *core.Config

	mu   sync.Mutex
	path string
}

func (s *FileStore) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "credentials.FileStore")
	s.path = s.Config.CredentialsFile

	return os.MkdirAll(filepath.Dir(s.path), 0o700)
}

// Load returns the stored pair, or a zero pair when nothing is stored.
func (s *FileStore) Load() (core.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.TokenPair{}, nil
		}
		return core.TokenPair{}, err
	}

	var pair core.TokenPair
	if err = json.Unmarshal(data, &pair); err != nil {
		return core.TokenPair{}, err
	}

	return pair, nil
}

func (s *FileStore) Store(pair core.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash never leaves a half-written file.
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// Clear removes the stored pair. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
