// Package auth orchestrates login, identity refresh and logout over the
// session store, the anti-forgery token provider and the durable session
// indicator.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	access "github.com/fieldline/access-go"
	"github.com/fieldline/access-go/audit"
	"github.com/fieldline/access-go/metrics"
)

// SessionFlag is the durable indicator that a session was active when the
// process last ran. A fresh process checks it to decide whether identity
// resolution is worth attempting at all.
const SessionFlag = "fieldline.session.active"

// Service implements access.AuthService.
type Service struct {
	backend access.AuthBackend
	tokens  access.TokenProvider
	flags   access.FlagStore
	store   access.SessionStore

	logger  *slog.Logger
	metrics *metrics.Metrics
	trail   *audit.Trail

	// signedOut runs after logout has cleared client-side state, the
	// hook the embedding UI uses to redirect to the entry point.
	signedOut func()

	// clearMu serializes durable-indicator clearing so overlapping
	// expiry signals clear it exactly once.
	clearMu sync.Mutex
}

// compile-time check
var _ access.AuthService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the Prometheus metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditTrail sets the audit trail for auth events.
func WithAuditTrail(t *audit.Trail) Option {
	return func(s *Service) { s.trail = t }
}

// WithSignedOutHook sets a hook invoked after logout clears state.
func WithSignedOutHook(fn func()) Option {
	return func(s *Service) { s.signedOut = fn }
}

// New creates an auth service over the given collaborators.
func New(backend access.AuthBackend, tokens access.TokenProvider, flags access.FlagStore, store access.SessionStore, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		tokens:  tokens,
		flags:   flags,
		store:   store,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Login acquires the anti-forgery token if none is held, submits the
// credentials and commits the normalized identity. Any failure clears the
// durable indicator and commits no-identity before returning, so a failed
// login never leaves a stale cached identity behind.
func (s *Service) Login(ctx context.Context, creds Credentials) (*access.LoginResult, error) {
	res, err := s.login(ctx, creds)
	if err != nil {
		s.clearSession()
		s.store.Commit(nil)
		s.metrics.LoginAttempt(false)
		s.trail.Record(audit.Event{
			Action: audit.ActionLogin,
			Result: "failure",
			Error:  err.Error(),
		})
		return nil, err
	}

	s.metrics.LoginAttempt(true)
	s.trail.Record(audit.Event{
		ActorID: res.Identity.ID,
		OrgID:   orgID(res.Identity),
		Action:  audit.ActionLogin,
		Result:  "success",
	})
	return res, nil
}

// Credentials is an alias kept so callers importing only this package can
// construct login input.
type Credentials = access.Credentials

func (s *Service) login(ctx context.Context, creds Credentials) (*access.LoginResult, error) {
	if _, err := s.tokens.Get(ctx); err != nil {
		return nil, fmt.Errorf("auth: pre-flight token: %w", err)
	}

	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	if !res.HasPortalAccess {
		return nil, access.ErrPortalAccessDenied
	}

	res.Identity = Normalize(res.Identity)
	if err := s.flags.Set(SessionFlag, time.Now()); err != nil {
		s.logger.Warn("session indicator not persisted", "error", err)
	}
	s.store.Commit(res.Identity)
	return res, nil
}

// Current returns the resolved identity, or nil when the actor is logged
// out. An unauthorized resolution clears the durable indicator and commits
// no-identity silently. Any other failure is retried once and then
// degraded to the logged-out state: ambiguity about session validity is
// resolved in favor of re-authentication, never an error screen.
func (s *Service) Current(ctx context.Context) (*access.Identity, error) {
	start := time.Now()

	id, err := s.store.Resolve(ctx)
	if err == nil {
		s.metrics.IdentityResolution("ok", time.Since(start))
		return id, nil
	}
	if errors.Is(err, access.ErrUnauthorized) {
		s.metrics.IdentityResolution("unauthorized", time.Since(start))
		s.expireSession()
		return nil, nil
	}

	s.logger.Warn("identity resolution failed, retrying once", "error", err)
	id, err = s.store.Resolve(ctx)
	if err == nil {
		s.metrics.IdentityResolution("ok", time.Since(start))
		return id, nil
	}
	s.metrics.IdentityResolution("error", time.Since(start))
	if errors.Is(err, access.ErrUnauthorized) {
		s.expireSession()
		return nil, nil
	}

	s.logger.Warn("identity resolution failed, degrading to logged-out", "error", err)
	s.store.Commit(nil)
	return nil, nil
}

// Logout notifies the server best-effort, then unconditionally clears the
// durable indicator and the cached identity, and finally runs the
// signed-out hook. The clearing runs deferred so a failed server
// notification cannot skip it.
func (s *Service) Logout(ctx context.Context) error {
	defer func() {
		s.clearSession()
		s.store.Commit(nil)
		s.metrics.SignOut()
		s.trail.Record(audit.Event{Action: audit.ActionLogout, Result: "success"})
		if s.signedOut != nil {
			s.signedOut()
		}
	}()

	if err := s.backend.Logout(ctx); err != nil {
		s.logger.Warn("logout notification failed", "error", err)
	}
	return nil
}

// expireSession is the silent transition to logged-out on a detected
// session expiry.
func (s *Service) expireSession() {
	s.clearSession()
	s.store.Commit(nil)
	s.metrics.SignOut()
	s.trail.Record(audit.Event{Action: audit.ActionRefresh, Result: "failure", Error: "unauthorized"})
}

// clearSession removes the durable indicator, once, however many
// overlapping failure paths reach it.
func (s *Service) clearSession() {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()

	_, ok, err := s.flags.Get(SessionFlag)
	if err != nil {
		s.logger.Warn("session indicator read failed", "error", err)
	}
	if !ok {
		return
	}
	if err := s.flags.Remove(SessionFlag); err != nil {
		s.logger.Warn("session indicator not cleared", "error", err)
	}
}

// HasRecentSession reports whether the durable indicator says a session
// was active. It lets a fresh process skip resolution entirely when the
// actor never logged in.
func (s *Service) HasRecentSession() bool {
	_, ok, err := s.flags.Get(SessionFlag)
	if err != nil {
		s.logger.Warn("session indicator read failed", "error", err)
		return false
	}
	return ok
}

// Normalize produces the committed form of a backend profile. It is
// access.Normalize under its historical name; the session store applies
// the same step on the resolution path.
func Normalize(id *access.Identity) *access.Identity {
	return access.Normalize(id)
}

func orgID(id *access.Identity) string {
	if id == nil || id.Organization == nil {
		return ""
	}
	return id.Organization.ID
}
