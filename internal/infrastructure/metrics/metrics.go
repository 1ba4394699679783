package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wholesale_app"

// Metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	adminRequests    *prometheus.CounterVec
	adminDuration    *prometheus.HistogramVec
	registrations    *prometheus.CounterVec
	provisioningRuns *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		adminRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_graphql_requests_total",
			Help:      "Admin GraphQL requests by operation, client path and outcome.",
		}, []string{"operation", "client", "outcome"}),
		adminDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "admin_graphql_request_duration_seconds",
			Help:      "Latency of Admin GraphQL requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "client"}),
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Wholesale registrations by outcome.",
		}, []string{"outcome"}),
		provisioningRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_runs_total",
			Help:      "Storefront provisioning runs by outcome.",
		}, []string{"outcome"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
	}
}

// ObserveAdminRequest records one Admin GraphQL call
func (m *Metrics) ObserveAdminRequest(operation, client, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.adminRequests.WithLabelValues(operation, client, outcome).Inc()
	m.adminDuration.WithLabelValues(operation, client).Observe(elapsed.Seconds())
}

func (m *Metrics) RegistrationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ProvisioningOutcome(outcome string) {
	if m == nil {
		return
	}
	m.provisioningRuns.WithLabelValues(outcome).Inc()
}

// Middleware counts requests by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}
