package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Processing metrics
	CandidatesTotal  *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec
	RoundsTotal      *prometheus.CounterVec
	RoundDuration    *prometheus.HistogramVec

	// Artifact metrics
	ArtifactWritesTotal *prometheus.CounterVec
	ArtifactEntries     prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ registration.Recorder = (*Metrics)(nil)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		CandidatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langreg_candidates_total",
				Help: "Total number of validated candidate declarations",
			},
			[]string{"outcome"},
		),
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langreg_diagnostics_total",
				Help: "Total number of reported diagnostics",
			},
			[]string{"severity"},
		),
		RoundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langreg_rounds_total",
				Help: "Total number of processed rounds",
			},
			[]string{"final"},
		),
		RoundDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langreg_round_duration_seconds",
				Help:    "Round processing duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"final"},
		),

		ArtifactWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langreg_artifact_writes_total",
				Help: "Total number of artifact finalizations by write status",
			},
			[]string{"status"},
		),
		ArtifactEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "langreg_artifact_entries",
				Help: "Number of registrations in the last finalized artifact",
			},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langreg_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langreg_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.CandidatesTotal,
		m.DiagnosticsTotal,
		m.RoundsTotal,
		m.RoundDuration,
		m.ArtifactWritesTotal,
		m.ArtifactEntries,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// RecordCandidate counts a candidate by outcome
func (m *Metrics) RecordCandidate(outcome string) {
	m.CandidatesTotal.WithLabelValues(outcome).Inc()
}

// RecordDiagnostic counts a reported diagnostic
func (m *Metrics) RecordDiagnostic(severity registration.Severity) {
	m.DiagnosticsTotal.WithLabelValues(string(severity)).Inc()
}

// RecordRound counts a round and observes its duration
func (m *Metrics) RecordRound(final bool, seconds float64) {
	label := strconv.FormatBool(final)
	m.RoundsTotal.WithLabelValues(label).Inc()
	m.RoundDuration.WithLabelValues(label).Observe(seconds)
}

// RecordWrite counts a finalization and sets the entry gauge
func (m *Metrics) RecordWrite(status string, entries int) {
	m.ArtifactWritesTotal.WithLabelValues(status).Inc()
	m.ArtifactEntries.Set(float64(entries))
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(router *mux.Router, registry *prometheus.Registry) {
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
