package metrics

import (
	"testing"
	"time"
)

// Global metrics instance (reused across enabled tests to avoid Prometheus
// registry conflicts)
var globalMetrics *Metrics

func init() {
	globalMetrics = New(true)
}

func TestEnabledMetricsDoNotPanic(t *testing.T) {
	m := globalMetrics

	m.LoginAttempt(true)
	m.LoginAttempt(false)
	m.IdentityResolution("ok", 5*time.Millisecond)
	m.IdentityResolution("unauthorized", time.Millisecond)
	m.IdentityResolution("error", time.Millisecond)
	m.PermissionCheck(true)
	m.PermissionCheck(false)
	m.SignOut()
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(false)

	m.LoginAttempt(true)
	m.IdentityResolution("ok", time.Millisecond)
	m.PermissionCheck(false)
	m.SignOut()
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.LoginAttempt(true)
	m.IdentityResolution("ok", time.Millisecond)
	m.PermissionCheck(true)
	m.SignOut()
}
