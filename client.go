// Package access provides the field-sales console's session and permission
// resolution SDK.
//
// The SDK defines interfaces for identity resolution, login orchestration,
// durable session flags and role permission administration. Concrete
// implementations are injected via Option functions, keeping the core
// independent of any specific transport.
//
// Example usage with the REST backend:
//
//	client, err := access.NewClient(
//	    access.Config{BaseURL: "https://console.example.com"},
//	    access.WithSessionStore(store),
//	    access.WithAuthService(authSvc),
//	)
package access

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fieldline/access-go/audit"
	"github.com/fieldline/access-go/metrics"
)

// Client is the main entry point for console access operations.
// Service implementations are injected via Option functions.
type Client struct {
	config   Config
	logger   *slog.Logger
	sessions SessionStore
	auth     AuthService
	roles    RoleService
	metrics  *metrics.Metrics
	audit    *audit.Trail
}

// Config holds connection and behavior configuration.
type Config struct {
	// BaseURL is the address of the console API (e.g.
	// "https://console.example.com").
	BaseURL string

	// EntryPoint is the sign-in path signed-out users are sent to, wired
	// into middleware via ginmw.WithSignInRedirect. Default: "/login".
	EntryPoint string
}

// DefaultEntryPoint is where signed-out users land.
const DefaultEntryPoint = "/login"

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSessionStore sets the session store implementation.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.sessions = s }
}

// WithAuthService sets the auth orchestration implementation.
func WithAuthService(a AuthService) Option {
	return func(c *Client) { c.auth = a }
}

// WithRoleService sets the role administration implementation.
func WithRoleService(r RoleService) Option {
	return func(c *Client) { c.roles = r }
}

// WithMetrics sets the Prometheus metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithAuditTrail sets the audit trail for auth and access events.
func WithAuditTrail(t *audit.Trail) Option {
	return func(c *Client) { c.audit = t }
}

// NewClient creates a new access client with the given configuration and
// options.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("access: BaseURL is required")
	}
	if cfg.EntryPoint == "" {
		cfg.EntryPoint = DefaultEntryPoint
	}

	c := &Client{config: cfg}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Sessions returns the session store, or nil if not configured.
func (c *Client) Sessions() SessionStore { return c.sessions }

// Auth returns the auth service, or nil if not configured.
func (c *Client) Auth() AuthService { return c.auth }

// Roles returns the role administration service, or nil if not configured.
func (c *Client) Roles() RoleService { return c.roles }

// Metrics returns the metrics instance, or nil if not configured.
func (c *Client) Metrics() *metrics.Metrics { return c.metrics }

// Audit returns the audit trail, or nil if not configured.
func (c *Client) Audit() *audit.Trail { return c.audit }

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{c.sessions, c.auth, c.roles}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if c.audit != nil {
		if err := c.audit.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
