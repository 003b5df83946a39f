// Package search debounces keystroke-driven user search. Each issued
// request carries a generation token; a response is dropped unless its
// generation is still the latest, so a slow response for an old query can
// never overwrite results for a newer one.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gramflow/internal/core"
	"gramflow/pkg/gram"
)

const defaultDelay = 300 * time.Millisecond

type Searcher struct {
	Logger *slog.Logger
	Client *gram.Client

	// Delay overrides the debounce interval, mainly for tests.
	Delay time.Duration

	// OnUpdate, when set, fires after results or the error change.
	OnUpdate func()

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	results []core.UserProfile
	lastErr string
}

func (s *Searcher) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "search.Searcher")
	if s.Delay == 0 {
		s.Delay = defaultDelay
	}

	return nil
}

// Query schedules a search for q after the debounce delay, superseding any
// pending or in-flight query. An empty query clears results immediately.
func (s *Searcher) Query(ctx context.Context, q string) {
	q = strings.TrimSpace(q)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if q == "" {
		s.results = nil
		s.lastErr = ""
		s.notify()
		return
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.Delay, func() {
		s.fire(ctx, gen, q)
	})
}

func (s *Searcher) fire(ctx context.Context, gen uint64, q string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	profiles, err := s.Client.SearchUsers(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer query was issued while this one was in flight.
	if gen != s.gen {
		s.Logger.Debug("discarding stale search response", "query", q)
		return
	}

	if err != nil {
		s.lastErr = err.Error()
		s.notify()
		return
	}

	s.results = profiles
	s.lastErr = ""
	s.notify()
}

func (s *Searcher) notify() {
	if s.OnUpdate != nil {
		s.OnUpdate()
	}
}

// Results returns a copy of the latest results.
func (s *Searcher) Results() []core.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.UserProfile(nil), s.results...)
}

func (s *Searcher) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
