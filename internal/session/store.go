// Package session owns the authenticated identity and the credential
// lifecycle: anonymous -> authenticating -> authenticated, and back to
// anonymous on logout or irrecoverable refresh failure.
package session

import (
	"context"
	"log/slog"
	"sync"

	"gramflow/internal/core"
	"gramflow/pkg/gram"
)

type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

type Store struct {
	Logger *slog.Logger
	Client *gram.Client
	Creds  core.CredentialStore

	mu       sync.Mutex
	state    State
	identity *core.Identity
	lastErr  string
}

func (s *Store) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "session.Store")
	s.state = StateAnonymous

	// Refresh failure inside the client is indistinguishable from logout
	// as far as local state goes.
	s.Client.OnSessionExpired(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state = StateAnonymous
		s.identity = nil
	})

	return nil
}

// Login exchanges the provider token for an identity and a credential
// pair. Credentials are persisted before the state flips to authenticated,
// so no path observes an authenticated state without stored tokens.
func (s *Store) Login(ctx context.Context, providerToken string) (core.Identity, error) {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.lastErr = ""
	s.mu.Unlock()

	identity, pair, err := s.Client.Login(ctx, providerToken)
	if err != nil {
		s.fail(err)
		return core.Identity{}, err
	}

	if err = s.Creds.Store(pair); err != nil {
		s.fail(err)
		return core.Identity{}, err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = &identity
	s.mu.Unlock()

	s.Logger.Info("logged in", "user", identity.ID)
	return identity, nil
}

// FetchIdentity resolves stored credentials into an identity, e.g. after a
// restart. With no stored credentials it is a no-op that leaves the store
// anonymous. Invalid credentials are cleared so the next render sees a
// clean anonymous state.
func (s *Store) FetchIdentity(ctx context.Context) (core.Identity, error) {
	pair, err := s.Creds.Load()
	if err != nil {
		return core.Identity{}, err
	}
	if pair.Empty() {
		return core.Identity{}, nil
	}

	identity, err := s.Client.Me(ctx)
	if err != nil {
		if clearErr := s.Creds.Clear(); clearErr != nil {
			s.Logger.Error("cannot clear credentials", "error", clearErr)
		}
		s.mu.Lock()
		s.state = StateAnonymous
		s.identity = nil
		s.lastErr = err.Error()
		s.mu.Unlock()
		return core.Identity{}, err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = &identity
	s.lastErr = ""
	s.mu.Unlock()

	return identity, nil
}

// Logout invalidates the session server-side, best effort. Local
// credentials are cleared no matter what; a dead network must not leave
// stale tokens behind.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.Client.Logout(ctx); err != nil {
		s.Logger.Warn("server-side logout failed", "error", err)
	}

	err := s.Creds.Clear()

	s.mu.Lock()
	s.state = StateAnonymous
	s.identity = nil
	s.mu.Unlock()

	return err
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.identity = nil
	s.lastErr = err.Error()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns a copy of the current identity; ok is false when
// anonymous or authenticating.
func (s *Store) Identity() (core.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return core.Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
