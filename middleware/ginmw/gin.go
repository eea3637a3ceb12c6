// Package ginmw provides Gin HTTP middleware for the access SDK.
//
// Identity resolves the current actor through the auth service and stores
// it in the request context; RequireAccess gates a route on the composite
// plan-and-permission check.
package ginmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	access "github.com/fieldline/access-go"
	"github.com/fieldline/access-go/audit"
	"github.com/fieldline/access-go/authz"
	"github.com/fieldline/access-go/metrics"
)

// Context keys for storing access data in gin.Context.
const (
	KeyIdentity = "access_identity"
	KeyOrgID    = "access_org_id"
	KeyRole     = "access_role"
)

// IdentityOption configures Identity middleware behavior.
type IdentityOption func(*identityConfig)

type identityConfig struct {
	excludedPaths  map[string]bool
	signInRedirect string
}

// WithExcludedPaths sets paths that skip identity resolution (e.g. health
// checks).
func WithExcludedPaths(paths ...string) IdentityOption {
	return func(cfg *identityConfig) {
		for _, p := range paths {
			cfg.excludedPaths[p] = true
		}
	}
}

// WithSignInRedirect sends signed-out browser requests to the given path,
// typically Client.Config().EntryPoint. Requests that do not accept HTML
// still receive the JSON 401.
func WithSignInRedirect(path string) IdentityOption {
	return func(cfg *identityConfig) { cfg.signInRedirect = path }
}

// Identity returns Gin middleware that resolves the current identity via
// the auth service and stores it in the context. Responds with 401 when
// the actor is logged out, or redirects to the sign-in entry point when
// one is configured and the request accepts HTML.
func Identity(svc access.AuthService, opts ...IdentityOption) gin.HandlerFunc {
	cfg := &identityConfig{excludedPaths: make(map[string]bool)}
	for _, o := range opts {
		o(cfg)
	}

	return func(c *gin.Context) {
		if cfg.excludedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		id, err := svc.Current(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "identity resolution failed"})
			return
		}
		if id == nil {
			if cfg.signInRedirect != "" && strings.Contains(c.GetHeader("Accept"), "text/html") {
				c.Redirect(http.StatusFound, cfg.signInRedirect)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		c.Set(KeyIdentity, id)
		c.Set(KeyRole, id.Role)
		if id.Organization != nil {
			c.Set(KeyOrgID, id.Organization.ID)
		}

		c.Next()
	}
}

// GuardOption configures RequireAccess behavior.
type GuardOption func(*guardConfig)

type guardConfig struct {
	metrics *metrics.Metrics
	trail   *audit.Trail
}

// WithMetrics records every gate decision.
func WithMetrics(m *metrics.Metrics) GuardOption {
	return func(cfg *guardConfig) { cfg.metrics = m }
}

// WithAuditTrail records denied gate decisions.
func WithAuditTrail(t *audit.Trail) GuardOption {
	return func(cfg *guardConfig) { cfg.trail = t }
}

// RequireAccess returns Gin middleware that gates a route on
// authz.HasAccess for the given module and feature. Requires Identity
// middleware to run first. Responds with 403 when access is denied.
func RequireAccess(module, feature string, opts ...GuardOption) gin.HandlerFunc {
	cfg := &guardConfig{}
	for _, o := range opts {
		o(cfg)
	}

	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		allowed := authz.HasAccess(id, module, feature)
		cfg.metrics.PermissionCheck(allowed)
		if !allowed {
			cfg.trail.Record(audit.Event{
				ActorID: id.ID,
				Action:  audit.ActionAccessCheck,
				Module:  module,
				Feature: feature,
				Result:  "denied",
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		c.Next()
	}
}

// GetIdentity returns the resolved identity stored by Identity, or nil.
func GetIdentity(c *gin.Context) *access.Identity {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*access.Identity)
	return id
}

// GetRole returns the actor's role tag stored by Identity.
func GetRole(c *gin.Context) string {
	v, ok := c.Get(KeyRole)
	if !ok {
		return ""
	}
	role, _ := v.(string)
	return role
}

// GetOrgID returns the actor's organization ID stored by Identity.
func GetOrgID(c *gin.Context) string {
	v, ok := c.Get(KeyOrgID)
	if !ok {
		return ""
	}
	orgID, _ := v.(string)
	return orgID
}
