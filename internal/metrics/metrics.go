// Package metrics exposes the translation pipeline as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline implements ports.PipelineMetrics.
type Pipeline struct {
	registry *prometheus.Registry

	UtterancesTotal    *prometheus.CounterVec
	TranslationsTotal  *prometheus.CounterVec
	TranslationLatency prometheus.Histogram
	QueueDepthGauge    prometheus.Gauge
	DucksTotal         *prometheus.CounterVec
	RestartsTotal      prometheus.Counter
}

func NewPipeline(namespace string) *Pipeline {
	if namespace == "" {
		namespace = "livetranslate"
	}

	registry := prometheus.NewRegistry()

	utterancesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Recognized utterances by classification",
		},
		[]string{"class"},
	)

	translationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation jobs by outcome",
		},
		[]string{"status"},
	)

	translationLatency := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_latency_seconds",
			Help:      "Time from enqueue to translated text",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "translation_queue_depth",
			Help:      "Jobs waiting for the translation service",
		},
	)

	ducksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ducks_total",
			Help:      "Playback volume reductions by trigger",
		},
		[]string{"trigger"},
	)

	restartsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_restarts_total",
			Help:      "Recognition segments restarted after ending",
		},
	)

	registry.MustRegister(
		utterancesTotal,
		translationsTotal,
		translationLatency,
		queueDepth,
		ducksTotal,
		restartsTotal,
		prometheus.NewGoCollector(),
	)

	return &Pipeline{
		registry:           registry,
		UtterancesTotal:    utterancesTotal,
		TranslationsTotal:  translationsTotal,
		TranslationLatency: translationLatency,
		QueueDepthGauge:    queueDepth,
		DucksTotal:         ducksTotal,
		RestartsTotal:      restartsTotal,
	}
}

func (p *Pipeline) UtteranceClassified(class string) {
	p.UtterancesTotal.WithLabelValues(class).Inc()
}

func (p *Pipeline) TranslationCompleted(latency time.Duration, err error) {
	if err != nil {
		p.TranslationsTotal.WithLabelValues("error").Inc()
		return
	}
	p.TranslationsTotal.WithLabelValues("ok").Inc()
	p.TranslationLatency.Observe(latency.Seconds())
}

func (p *Pipeline) QueueDepth(n int) {
	p.QueueDepthGauge.Set(float64(n))
}

func (p *Pipeline) Ducked(trigger string) {
	p.DucksTotal.WithLabelValues(trigger).Inc()
}

func (p *Pipeline) SessionRestarted() {
	p.RestartsTotal.Inc()
}

// Registry returns the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
