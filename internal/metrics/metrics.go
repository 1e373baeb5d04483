package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK          = "ok"
	ResultEmpty       = "empty"
	ResultUnavailable = "feed_unavailable"
	ResultError       = "error"
)

type Metrics struct {
	registry        *prometheus.Registry
	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	feedFailures    *prometheus.CounterVec
	reportsAccepted prometheus.Counter
	reportsRejected prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openseat_chart_renders_total",
			Help: "Chart render attempts, labeled by output format and result.",
		}, []string{"format", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openseat_chart_render_duration_seconds",
			Help:    "Time spent painting and encoding a chart.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"format"}),
		feedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openseat_feed_failures_total",
			Help: "Feed loads that failed, labeled by source.",
		}, []string{"source"}),
		reportsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openseat_reports_accepted_total",
			Help: "Crowd reports accepted into the in-memory list.",
		}),
		reportsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openseat_reports_rejected_total",
			Help: "Crowd reports rejected by validation.",
		}),
	}

	m.registry.MustRegister(
		m.renders,
		m.renderDuration,
		m.feedFailures,
		m.reportsAccepted,
		m.reportsRejected,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRender(format, result string, d time.Duration) {
	m.renders.WithLabelValues(format, result).Inc()
	if result == ResultOK {
		m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	}
}

func (m *Metrics) FeedFailed(source string) {
	m.feedFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) ReportAccepted() {
	m.reportsAccepted.Inc()
}

func (m *Metrics) ReportRejected() {
	m.reportsRejected.Inc()
}
