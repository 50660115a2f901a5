// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "circularity"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reportsGenerated *prometheus.CounterVec
	reportErrors     *prometheus.CounterVec
	compositeIndex   prometheus.Histogram
	answeredFraction prometheus.Histogram
	sessionsActive   prometheus.Gauge
	sessionsExpired  prometheus.Counter
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Reports computed, by source.",
		}, []string{"source"}),
		reportErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Report requests rejected, by reason.",
		}, []string{"reason"}),
		compositeIndex: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "composite_index",
			Help:      "Distribution of computed Circularity Index values.",
			Buckets:   prometheus.LinearBuckets(0.5, 0.5, 10),
		}),
		answeredFraction: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answered_fraction",
			Help:      "Fraction of catalog factors answered per report.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
		sessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions evicted after their idle TTL.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveReport records a generated report.
func (m *Metrics) ObserveReport(source string, compositeIndex, answeredFraction float64) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(source).Inc()
	m.compositeIndex.Observe(compositeIndex)
	m.answeredFraction.Observe(answeredFraction)
}

// ReportRejected records a report request that failed validation.
func (m *Metrics) ReportRejected(reason string) {
	if m == nil {
		return
	}
	m.reportErrors.WithLabelValues(reason).Inc()
}

// SetSessionsActive sets the live session gauge.
func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// SessionsExpired adds n evicted sessions.
func (m *Metrics) SessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsExpired.Add(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
