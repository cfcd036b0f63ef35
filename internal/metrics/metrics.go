// Package metrics holds the Prometheus instruments of the conversion service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/diccas/internal/vrt"
)

const (
	labelStatus = "status"
	labelType   = "type"
)

// Metrics groups the instruments. Each instance owns its registry so that
// tests and multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	conversions     *prometheus.CounterVec
	conversionTime  prometheus.Histogram
	paragraphs      prometheus.Counter
	sentences       prometheus.Counter
	tokens          prometheus.Counter
	structures      *prometheus.CounterVec
	taggerLatency   *prometheus.SummaryVec
	queueDepth      prometheus.Gauge
	recoveredParses prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diccas_conversions_total",
			Help: "Conversion jobs finished, by final status.",
		}, []string{labelStatus}),
		conversionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diccas_conversion_duration_seconds",
			Help:    "Wall time of a conversion from parse to last file written.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		paragraphs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diccas_paragraphs_total",
			Help: "Paragraphs linearized.",
		}),
		sentences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diccas_sentences_total",
			Help: "Sentences emitted.",
		}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diccas_tokens_total",
			Help: "Token lines emitted.",
		}),
		structures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diccas_structures_total",
			Help: "Structural divisions opened, by type.",
		}, []string{labelType}),
		taggerLatency: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "diccas_tagger_request_duration_seconds",
			Help:       "Latency of remote tagger requests.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{labelStatus}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "diccas_queue_depth",
			Help: "Conversion jobs waiting for a worker.",
		}),
		recoveredParses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diccas_recovered_parses_total",
			Help: "Documents that needed the recovering parser.",
		}),
	}
	m.registry.MustRegister(
		m.conversions,
		m.conversionTime,
		m.paragraphs,
		m.sentences,
		m.tokens,
		m.structures,
		m.taggerLatency,
		m.queueDepth,
		m.recoveredParses,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveConversion records a finished job.
func (m *Metrics) ObserveConversion(status string, d time.Duration) {
	m.conversions.WithLabelValues(status).Inc()
	m.conversionTime.Observe(d.Seconds())
}

// ObserveResult adds a run's counts.
func (m *Metrics) ObserveResult(st vrt.Stats) {
	m.paragraphs.Add(float64(st.Paragraphs))
	m.sentences.Add(float64(st.Sentences))
	m.tokens.Add(float64(st.Tokens))
	for typ, n := range st.Divisions {
		m.structures.WithLabelValues(typ).Add(float64(n))
	}
	if st.Recovered {
		m.recoveredParses.Inc()
	}
}

// ObserveTagger matches the tagger.WithObserver callback.
func (m *Metrics) ObserveTagger(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.taggerLatency.WithLabelValues(status).Observe(d.Seconds())
}

// SetQueueDepth reports the number of waiting jobs.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
