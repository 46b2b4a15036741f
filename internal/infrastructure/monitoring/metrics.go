package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/ueba/internal/domain/models"
)

// Metrics holds the Prometheus collectors for the scoring service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	scoringTotal     *prometheus.CounterVec
	scoringDuration  prometheus.Histogram
	severityTotal    *prometheus.CounterVec
	anomalyTypeTotal *prometheus.CounterVec
	componentScores  *prometheus.HistogramVec
	alertsTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueba",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ueba",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		scoringTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueba",
			Subsystem: "scoring",
			Name:      "events_total",
			Help:      "Total scored events by outcome.",
		}, []string{"outcome"}),

		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ueba",
			Subsystem: "scoring",
			Name:      "duration_seconds",
			Help:      "End-to-end scoring latency per event.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		severityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueba",
			Subsystem: "scoring",
			Name:      "severity_total",
			Help:      "Scored events by severity tier.",
		}, []string{"severity"}),

		anomalyTypeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueba",
			Subsystem: "scoring",
			Name:      "anomaly_type_total",
			Help:      "Scored events by probable anomaly type.",
		}, []string{"anomaly_type"}),

		componentScores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ueba",
			Subsystem: "scoring",
			Name:      "component_score",
			Help:      "Distribution of per-detector scores before fusion.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"detector"}),

		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ueba",
			Subsystem: "alerting",
			Name:      "alerts_total",
			Help:      "High severity alerts by dispatch outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.scoringTotal,
		m.scoringDuration,
		m.severityTotal,
		m.anomalyTypeTotal,
		m.componentScores,
		m.alertsTotal,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveScoring records one scoring pass and its component breakdown.
func (m *Metrics) ObserveScoring(result *models.ScoreResult, duration time.Duration) {
	m.scoringTotal.WithLabelValues("ok").Inc()
	m.scoringDuration.Observe(duration.Seconds())
	m.severityTotal.WithLabelValues(string(result.Severity)).Inc()
	m.anomalyTypeTotal.WithLabelValues(string(result.AnomalyType)).Inc()
	m.componentScores.WithLabelValues("isolation_forest").Observe(result.Scores.IsolationForest)
	m.componentScores.WithLabelValues("markov").Observe(result.Scores.Markov)
	m.componentScores.WithLabelValues("baseline").Observe(result.Scores.Baseline)
}

// ObserveScoringError records a scoring pass that failed.
func (m *Metrics) ObserveScoringError() {
	m.scoringTotal.WithLabelValues("error").Inc()
}

// ObserveAlert records an alert dispatch outcome: published, suppressed or
// failed.
func (m *Metrics) ObserveAlert(outcome string) {
	m.alertsTotal.WithLabelValues(outcome).Inc()
}
