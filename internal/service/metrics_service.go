package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
	conflictRetries prometheus.Counter
}

// NewMetricsService registers the API collectors on a dedicated registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_transitions_total",
		Help: "Enrollment state machine transitions by event and outcome",
	}, []string{"event", "outcome"})

	conflictRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "class_replace_conflicts_total",
		Help: "Stale class replaces detected by the store and retried",
	})

	registry.MustRegister(requestDuration, requestTotal, transitionTotal, conflictRetries)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitionTotal: transitionTotal,
		conflictRetries: conflictRetries,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveTransition records an enrollment state machine event outcome.
func (s *MetricsService) ObserveTransition(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "rejected"
	}
	s.transitionTotal.WithLabelValues(event, outcome).Inc()
}

// ObserveReplaceConflict counts a stale write detected during a mutation.
func (s *MetricsService) ObserveReplaceConflict() {
	s.conflictRetries.Inc()
}
