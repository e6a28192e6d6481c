package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return InitMetrics(reg), reg
}

func TestInitMetrics_registersAll(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.RecordDecision(OutcomeApplied)
	m.RecordGuard("true", time.Millisecond)
	m.RecordProcessStarted()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"catalogflow_decisions_total",
		"catalogflow_guard_evaluations_total",
		"catalogflow_guard_evaluation_duration_seconds",
		"catalogflow_processes_started_total",
	} {
		assert.True(t, names[want], "metric %s not registered", want)
	}
}

func TestRecordDecision_countsByOutcome(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.RecordDecision(OutcomeApplied)
	m.RecordDecision(OutcomeApplied)
	m.RecordDecision(OutcomeConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DecisionsTotal.WithLabelValues(OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecisionsTotal.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DecisionsTotal.WithLabelValues(OutcomeRejected)))
}

func TestNilMetrics_isNoop(t *testing.T) {
	var m *Metrics
	m.RecordDecision(OutcomeApplied)
	m.RecordGuard("false", time.Second)
	m.RecordProcessStarted()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware_recordsPattern(t *testing.T) {
	m, reg := newTestMetrics(t)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/processes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/processes/7", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/processes/{id}", "404")))

	scrape := httptest.NewRecorder()
	Handler(reg).ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(scrape.Body.String(), "catalogflow_http_requests_total"))
}
