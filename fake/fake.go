// Package fake provides in-memory implementations of the access backend
// interfaces for testing.
//
// Use fake.NewClient() in unit tests to avoid network calls and external
// dependencies.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	access "github.com/fieldline/access-go"
	"github.com/fieldline/access-go/auth"
	"github.com/fieldline/access-go/flagstore"
	"github.com/fieldline/access-go/matrix"
	"github.com/fieldline/access-go/roles"
	"github.com/fieldline/access-go/session"
	"github.com/fieldline/access-go/xsrf"
)

// Backend is an in-memory implementation of access.AuthBackend,
// session.Backend, xsrf.Source and roles.Backend.
type Backend struct {
	mu sync.Mutex

	identity     *access.Identity
	password     string
	portalAccess bool
	roleMatrices map[string]access.StoredMatrix

	signedIn bool

	whoAmIErr    error
	whoAmICalls  int
	logoutErr    error
	fetchedToken string
	tokenFetches int
}

// Option configures the fake backend.
type Option func(*Backend)

// WithIdentity sets the identity returned by login and WhoAmI.
func WithIdentity(id *access.Identity) Option {
	return func(b *Backend) { b.identity = id }
}

// WithPassword sets the accepted password (default "secret").
func WithPassword(pw string) Option {
	return func(b *Backend) { b.password = pw }
}

// WithoutPortalAccess makes login succeed authentication but report no
// web console entitlement.
func WithoutPortalAccess() Option {
	return func(b *Backend) { b.portalAccess = false }
}

// WithRoleMatrix seeds a role's stored permission matrix.
func WithRoleMatrix(roleID string, m access.StoredMatrix) Option {
	return func(b *Backend) { b.roleMatrices[roleID] = m }
}

// WithWhoAmIError makes identity resolution fail with err.
func WithWhoAmIError(err error) Option {
	return func(b *Backend) { b.whoAmIErr = err }
}

// WithLogoutError makes server-side logout fail with err.
func WithLogoutError(err error) Option {
	return func(b *Backend) { b.logoutErr = err }
}

// New creates a fake backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		password:     "secret",
		portalAccess: true,
		roleMatrices: make(map[string]access.StoredMatrix),
	}
	for _, o := range opts {
		o(b)
	}
	if b.identity == nil {
		b.identity = &access.Identity{
			ID:       uuid.NewString(),
			Name:     "Fake User",
			Email:    "fake@example.com",
			Role:     access.RoleUser,
			IsActive: true,
		}
	}
	return b
}

// Login authenticates against the configured password.
func (b *Backend) Login(ctx context.Context, creds access.Credentials) (*access.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if creds.Email != b.identity.Email || creds.Password != b.password {
		return nil, fmt.Errorf("fake: invalid credentials")
	}
	b.signedIn = true
	return &access.LoginResult{
		Identity:        b.identity,
		Token:           uuid.NewString(),
		ExpiresAt:       time.Now().Add(12 * time.Hour),
		HasPortalAccess: b.portalAccess,
	}, nil
}

// WhoAmI returns the configured identity, the configured error, or
// access.ErrUnauthorized when nobody is signed in.
func (b *Backend) WhoAmI(ctx context.Context) (*access.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.whoAmICalls++
	if b.whoAmIErr != nil {
		return nil, b.whoAmIErr
	}
	if !b.signedIn {
		return nil, access.ErrUnauthorized
	}
	return b.identity, nil
}

// Logout signs the fake session out.
func (b *Backend) Logout(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.logoutErr != nil {
		return b.logoutErr
	}
	b.signedIn = false
	return nil
}

// FetchToken implements xsrf.Source.
func (b *Backend) FetchToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokenFetches++
	if b.fetchedToken == "" {
		b.fetchedToken = uuid.NewString()
	}
	return b.fetchedToken, nil
}

// Permissions implements roles.Backend.
func (b *Backend) Permissions(ctx context.Context, roleID string) (access.StoredMatrix, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.roleMatrices[roleID]
	if !ok {
		return make(access.StoredMatrix), nil
	}
	return m, nil
}

// SavePermissions implements roles.Backend.
func (b *Backend) SavePermissions(ctx context.Context, roleID string, m access.StoredMatrix) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roleMatrices[roleID] = m
	return nil
}

// SignIn marks the fake session active without going through Login.
func (b *Backend) SignIn() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signedIn = true
}

// WhoAmICalls reports how many resolution calls reached the backend.
func (b *Backend) WhoAmICalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.whoAmICalls
}

// TokenFetches reports how many anti-forgery fetches reached the backend.
func (b *Backend) TokenFetches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokenFetches
}

// SetWhoAmIError swaps the resolution error at runtime.
func (b *Backend) SetWhoAmIError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.whoAmIErr = err
}

// NewClient creates an *access.Client with every service wired to one
// in-memory backend.
func NewClient(opts ...Option) (*access.Client, *Backend) {
	b := New(opts...)

	store := session.New(b)
	tokens := xsrf.New(b)
	flags := flagstore.NewMem()
	authSvc := auth.New(b, tokens, flags, store)
	roleSvc := roles.New(b, matrix.DefaultCatalog())

	c, _ := access.NewClient(
		access.Config{BaseURL: "fake://localhost"},
		access.WithSessionStore(store),
		access.WithAuthService(authSvc),
		access.WithRoleService(roleSvc),
	)
	return c, b
}
