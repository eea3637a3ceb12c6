// Package session provides the process-wide identity store, fetch
// coordinator and change broadcaster.
//
// The store holds at most one resolved identity. Resolution is
// deduplicated: however many callers ask concurrently before the first
// lookup settles, exactly one backend call happens and every caller
// observes the same result. Failures fan out to all waiters.
package session

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	access "github.com/fieldline/access-go"
)

// Backend resolves the identity bound to the current session.
// Implementations: httpapi/ (REST), fake/ (testing).
type Backend interface {
	// WhoAmI returns the resolved identity. An invalid session yields an
	// error matching access.ErrUnauthorized.
	WhoAmI(ctx context.Context) (*access.Identity, error)
}

// resolveKey is the single-flight key: there is only ever one identity to
// resolve, so one key covers the whole store.
const resolveKey = "identity"

// Store implements access.SessionStore with a configurable backend.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu        sync.RWMutex
	current   *access.Identity
	observers map[access.Observer]struct{}

	sf singleflight.Group
}

// compile-time check
var _ access.SessionStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a structured logger for the store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a session store with the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		logger:    slog.Default(),
		observers: make(map[access.Observer]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Cached returns the current identity or nil. Never blocks, never
// triggers network activity.
func (s *Store) Cached() *access.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Resolve returns the current identity, looking it up via the backend if
// the cache is empty. Concurrent callers before the first lookup settles
// share one backend call and one result; a failure is rethrown to every
// waiter. A successful lookup is normalized and committed, so observers
// see the refresh.
func (s *Store) Resolve(ctx context.Context) (*access.Identity, error) {
	if id := s.Cached(); id != nil {
		return id, nil
	}

	// singleflight is the in-flight marker: the second and later callers
	// join the executing lookup instead of starting their own.
	v, err, shared := s.sf.Do(resolveKey, func() (interface{}, error) {
		id, err := s.backend.WhoAmI(ctx)
		if err != nil {
			return nil, err
		}
		id = access.Normalize(id)
		s.Commit(id)
		return id, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("identity resolution deduplicated")
	}
	return v.(*access.Identity), nil
}

// Commit replaces the cached identity wholesale and broadcasts the new
// value to every observer. Committing nil (sign-out, resolution failure)
// also forgets any in-flight lookup so a later cache miss starts fresh
// rather than joining a stale one.
func (s *Store) Commit(identity *access.Identity) {
	s.mu.Lock()
	s.current = identity
	if identity == nil {
		s.sf.Forget(resolveKey)
	}
	snapshot := make([]access.Observer, 0, len(s.observers))
	for o := range s.observers {
		snapshot = append(snapshot, o)
	}
	s.mu.Unlock()

	// Iterate a snapshot so observers may unsubscribe mid-broadcast.
	for _, o := range snapshot {
		o.IdentityChanged(identity)
	}
}

// Subscribe registers an observer for identity changes and returns its
// unsubscribe func. Observers form a set: subscribing the same observer
// twice never produces duplicate notifications.
func (s *Store) Subscribe(o access.Observer) func() {
	s.mu.Lock()
	s.observers[o] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, o)
		s.mu.Unlock()
	}
}

// Reset clears the cached identity, all observers and any in-flight
// lookup. Test isolation only.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = nil
	s.observers = make(map[access.Observer]struct{})
	s.sf.Forget(resolveKey)
	s.mu.Unlock()
}
