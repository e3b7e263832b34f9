// Package metrics holds the panel's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ums_login_attempts_total",
		Help: "Login submissions by outcome.",
	}, []string{"outcome"})

	authDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ums_auth_request_duration_seconds",
		Help:    "Latency of calls to the authentication backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ums_login_rate_limited_total",
		Help: "Login requests refused by the rate limiter.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ums_panel_sessions",
		Help: "Panel sessions currently held in memory.",
	})

	auditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ums_audit_events_total",
		Help: "Login audit events by delivery result.",
	}, []string{"result"})
)

// ObserveLogin records one finished login submission. Validation failures
// never reach the backend, so they carry no latency.
func ObserveLogin(outcome string, took time.Duration, calledBackend bool) {
	loginAttempts.WithLabelValues(outcome).Inc()
	if calledBackend {
		authDuration.WithLabelValues(outcome).Observe(took.Seconds())
	}
}

// RateLimited counts a refused login request.
func RateLimited() { rateLimited.Inc() }

// SetSessions reports the number of live panel sessions.
func SetSessions(n int) { activeSessions.Set(float64(n)) }

// AuditEvent counts an audit event by result (published, stored, dropped, failed).
func AuditEvent(result string) { auditEvents.WithLabelValues(result).Inc() }
