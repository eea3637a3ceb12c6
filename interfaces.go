package access

import (
	"context"
	"time"
)

// Observer receives every identity mutation committed to the session
// store: login, refresh, logout, expiry. Observers are held in a set, so
// subscribing the same observer twice never produces duplicate calls.
type Observer interface {
	IdentityChanged(identity *Identity)
}

// SessionStore is the process-wide identity cache, fetch coordinator and
// change broadcaster.
// Implementations: session/ (single-flight store).
type SessionStore interface {
	// Cached returns the current identity or nil. Never blocks, never
	// triggers network activity.
	Cached() *Identity

	// Resolve returns the current identity, looking it up if necessary.
	// Concurrent callers share a single underlying lookup.
	Resolve(ctx context.Context) (*Identity, error)

	// Commit replaces the cached identity wholesale and broadcasts the
	// new value. Committing nil also invalidates any in-flight lookup.
	Commit(identity *Identity)

	// Subscribe registers an observer and returns its unsubscribe func.
	Subscribe(o Observer) (unsubscribe func())

	// Reset clears all state. Test isolation only.
	Reset()
}

// AuthService orchestrates login, identity refresh and logout.
// Implementations: auth/.
type AuthService interface {
	// Login authenticates the credentials and commits the normalized
	// identity on success.
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)

	// Current returns the resolved identity, or nil when the actor is
	// logged out. Resolution failures degrade to the logged-out state
	// rather than propagating.
	Current(ctx context.Context) (*Identity, error)

	// Logout notifies the server best-effort and unconditionally clears
	// client-side session state.
	Logout(ctx context.Context) error
}

// AuthBackend performs the network operations behind the auth service.
// Implementations: httpapi/ (REST), fake/ (testing).
type AuthBackend interface {
	// Login submits credentials and returns the raw login response.
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)

	// WhoAmI resolves the identity bound to the current session. An
	// invalid session yields an error matching ErrUnauthorized.
	WhoAmI(ctx context.Context) (*Identity, error)

	// Logout invalidates the session on the server.
	Logout(ctx context.Context) error
}

// TokenProvider supplies the anti-forgery token required before
// credential submission. Acquisition is idempotent: a held token is
// reused, concurrent first acquisitions share one fetch.
// Implementations: xsrf/.
type TokenProvider interface {
	Get(ctx context.Context) (string, error)
	Set(token string)
}

// FlagStore persists small durable flags across process restarts. It
// holds only the has-active-session indicator, never identity data.
// Implementations: flagstore/ (file-backed, in-memory).
type FlagStore interface {
	Set(key string, at time.Time) error
	Get(key string) (at time.Time, ok bool, err error)
	Remove(key string) error
}

// RoleService loads and persists role permission matrices in canonical
// storage shape.
// Implementations: roles/.
type RoleService interface {
	// Permissions returns the stored matrix for a role.
	Permissions(ctx context.Context, roleID string) (StoredMatrix, error)

	// SavePermissions persists a role's matrix wholesale.
	SavePermissions(ctx context.Context, roleID string, m StoredMatrix) error
}
