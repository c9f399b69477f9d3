package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	SOAPCalls      *prometheus.CounterVec
	SOAPDuration   *prometheus.HistogramVec
	HTTPLatency    *prometheus.HistogramVec
	UsersCreated   prometheus.Counter
	TokensIssued   *prometheus.CounterVec
	ItemsGranted   prometheus.Counter
	RateLimited    prometheus.Counter
	AuditPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SOAPCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gangland_soap_calls_total",
			Help: "SOAP calls by method and outcome",
		}, []string{"method", "outcome"}),
		SOAPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gangland_soap_duration_seconds",
			Help:    "Time to parse, dispatch and serialize one SOAP call",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gangland_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gangland_users_created_total",
			Help: "Total number of users created by account linking",
		}),
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gangland_tokens_issued_total",
			Help: "Bearer tokens issued by how the user was resolved",
		}, []string{"resolved_by"}),
		ItemsGranted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gangland_items_granted_total",
			Help: "Inventory items granted by store transactions",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "gangland_rate_limited_total",
			Help: "Requests rejected by the per client rate limit",
		}),
		AuditPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gangland_audit_events_total",
			Help: "Audit events by action and delivery result",
		}, []string{"action", "result"}),
	}
}

// ObserveSOAPCall records one dispatched SOAP request.
func (m *Metrics) ObserveSOAPCall(method, outcome string, start time.Time) {
	if method == "" {
		method = "none"
	}
	m.SOAPCalls.WithLabelValues(method, outcome).Inc()
	m.SOAPDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPLatency.WithLabelValues(method, route, statusClass(status)).Observe(d.Seconds())
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementTokensIssued(resolvedBy string) {
	m.TokensIssued.WithLabelValues(resolvedBy).Inc()
}

func (m *Metrics) AddItemsGranted(n int) {
	m.ItemsGranted.Add(float64(n))
}

func (m *Metrics) IncrementRateLimited() {
	m.RateLimited.Inc()
}

func (m *Metrics) IncrementAuditPublished(action, result string) {
	m.AuditPublished.WithLabelValues(action, result).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
