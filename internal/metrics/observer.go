// Package metrics exports timeline engine activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

// Observer counts transitions by kind and records how many timelines a
// session holds after each accepted one. Metrics live in their own registry.
type Observer struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	timelines   prometheus.Histogram
	latency     prometheus.Histogram
}

var _ timeline.TransitionObserver = (*Observer)(nil)

func NewObserver() *Observer {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Observer{
		registry: registry,
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantum_transitions_total",
			Help: "Timeline engine operations, partitioned by kind.",
		}, []string{"kind"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantum_rejected_choices_total",
			Help: "Ignored choices, partitioned by error code.",
		}, []string{"code"}),
		timelines: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantum_session_timelines",
			Help:    "Number of timelines in a session after an accepted choice.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantum_transition_duration_seconds",
			Help:    "Time spent applying a choice.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

func (o *Observer) ObserveTransition(ev timeline.TransitionEvent) {
	o.transitions.WithLabelValues(string(ev.Kind)).Inc()

	switch ev.Kind {
	case timeline.EventRejected:
		o.rejections.WithLabelValues(string(ev.Code)).Inc()
	case timeline.EventAdvance:
		o.timelines.Observe(float64(ev.Timelines))
		o.latency.Observe(ev.Duration.Seconds())
	}
}

func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// Handler serves the observer's registry in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
