package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Outbound send metrics
	SendRequestsTotal   *prometheus.CounterVec
	SendDurationSeconds *prometheus.HistogramVec

	// Classifier metrics
	ClassifierMatchesTotal *prometheus.CounterVec

	// Session metrics
	SessionsActive       prometheus.Gauge
	SessionsExpiredTotal prometheus.Counter

	// Profile lookup metrics
	ProfileLookupsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, suppressed, ignored
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concierge_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"}, // event_type: message, quick_reply, postback, receipt
		),

		SendRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_send_requests_total",
				Help: "Total number of Graph API send requests by status",
			},
			[]string{"status"}, // status: success, error
		),

		SendDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concierge_send_duration_seconds",
				Help:    "Graph API send duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"}, // kind: text, quick_reply
		),

		ClassifierMatchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_classifier_matches_total",
				Help: "Total number of classifier outcomes by category",
			},
			[]string{"category"}, // category: gratitude, lodging, dining, wellness, none
		),

		SessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "concierge_sessions_active",
				Help: "Current number of sessions held by the session store",
			},
		),

		SessionsExpiredTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "concierge_sessions_expired_total",
				Help: "Total number of sessions reset by the inactivity janitor",
			},
		),

		ProfileLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_profile_lookups_total",
				Help: "Total number of Graph profile lookups by status",
			},
			[]string{"status"}, // status: success, error, cached
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_rate_limiter_dropped_total",
				Help: "Total number of events dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "concierge_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: invalid_signature, bad_payload, verify_failed
		),
	}

	return m
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordSend records an outbound Graph API send
func (m *Metrics) RecordSend(kind, status string, duration float64) {
	m.SendRequestsTotal.WithLabelValues(status).Inc()
	m.SendDurationSeconds.WithLabelValues(kind).Observe(duration)
}

// RecordClassification records a classifier outcome
func (m *Metrics) RecordClassification(category string) {
	m.ClassifierMatchesTotal.WithLabelValues(category).Inc()
}

// SetActiveSessions updates the active session gauge
func (m *Metrics) SetActiveSessions(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordSessionExpired records a session reset by the inactivity janitor
func (m *Metrics) RecordSessionExpired() {
	m.SessionsExpiredTotal.Inc()
}

// RecordProfileLookup records a Graph profile lookup
func (m *Metrics) RecordProfileLookup(status string) {
	m.ProfileLookupsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimiterDrop records an event dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}
