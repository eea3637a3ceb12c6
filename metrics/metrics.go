// Package metrics provides Prometheus metrics for session and access
// operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the access SDK. A nil or
// disabled instance is safe to use; every method becomes a no-op.
type Metrics struct {
	enabled bool

	loginAttemptsTotal *prometheus.CounterVec

	identityResolutionsTotal *prometheus.CounterVec
	resolutionDuration       prometheus.Histogram

	permissionChecksTotal *prometheus.CounterVec

	sessionSignOutsTotal prometheus.Counter
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_login_attempts_total",
		Help: "Total login attempts",
	}, []string{"result"})

	m.identityResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_identity_resolutions_total",
		Help: "Total identity resolution outcomes",
	}, []string{"outcome"})

	m.resolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "access_identity_resolution_duration_seconds",
		Help:    "Identity resolution duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	m.permissionChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_permission_checks_total",
		Help: "Total permission checks",
	}, []string{"result"})

	m.sessionSignOutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "access_session_sign_outs_total",
		Help: "Total sign-outs, explicit or expiry-driven",
	})

	return m
}

// LoginAttempt records a login attempt outcome.
func (m *Metrics) LoginAttempt(success bool) {
	if m == nil || !m.enabled {
		return
	}
	m.loginAttemptsTotal.WithLabelValues(result(success)).Inc()
}

// IdentityResolution records an identity resolution outcome:
// "ok", "unauthorized" or "error".
func (m *Metrics) IdentityResolution(outcome string, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.identityResolutionsTotal.WithLabelValues(outcome).Inc()
	m.resolutionDuration.Observe(d.Seconds())
}

// PermissionCheck records an access decision.
func (m *Metrics) PermissionCheck(allowed bool) {
	if m == nil || !m.enabled {
		return
	}
	if allowed {
		m.permissionChecksTotal.WithLabelValues("allowed").Inc()
	} else {
		m.permissionChecksTotal.WithLabelValues("denied").Inc()
	}
}

// SignOut records a sign-out, explicit or expiry-driven.
func (m *Metrics) SignOut() {
	if m == nil || !m.enabled {
		return
	}
	m.sessionSignOutsTotal.Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
