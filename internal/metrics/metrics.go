package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDurationBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	guardDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1}
)

// Decision outcome labels.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeDenied   = "denied"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus instruments of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	DecisionsTotal          *prometheus.CounterVec
	GuardEvaluationsTotal   *prometheus.CounterVec
	GuardEvaluationDuration prometheus.Histogram
	ProcessesStartedTotal   prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// InitMetrics creates and registers all instruments on reg.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogflow_decisions_total",
			Help: "Total number of submitted decisions by outcome.",
		}, []string{"outcome"}),
		GuardEvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogflow_guard_evaluations_total",
			Help: "Total number of guard formula evaluations by result.",
		}, []string{"result"}),
		GuardEvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalogflow_guard_evaluation_duration_seconds",
			Help:    "Guard formula evaluation duration in seconds.",
			Buckets: guardDurationBuckets,
		}),
		ProcessesStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalogflow_processes_started_total",
			Help: "Total number of started processes.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogflow_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.GuardEvaluationsTotal,
		m.GuardEvaluationDuration,
		m.ProcessesStartedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) RecordDecision(outcome string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordGuard records one guard evaluation. result is "true", "false" or
// "error".
func (m *Metrics) RecordGuard(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.GuardEvaluationsTotal.WithLabelValues(result).Inc()
	m.GuardEvaluationDuration.Observe(took.Seconds())
}

func (m *Metrics) RecordProcessStarted() {
	if m == nil {
		return
	}
	m.ProcessesStartedTotal.Inc()
}

// Handler returns the scrape endpoint for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by the matched ServeMux pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
