// Package metrics exposes Prometheus instrumentation for the pipeline:
// cycle outcomes, publish attempts, and generation fallbacks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulsepost_cycles_total",
		Help: "Completed publish cycles by trigger and outcome.",
	}, []string{"trigger", "status"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulsepost_cycle_duration_seconds",
		Help:    "Wall-clock duration of a full produce-and-publish cycle.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	publishAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsepost_publish_attempts_total",
		Help: "Platform publish attempts, including retries.",
	})

	generationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsepost_generation_fallbacks_total",
		Help: "Cycles where the template fallback produced the body text.",
	})
)

// ObserveCycle records one finished cycle.
func ObserveCycle(trigger, status string, seconds float64, attempts int, fellBack bool) {
	cyclesTotal.WithLabelValues(trigger, status).Inc()
	cycleDuration.Observe(seconds)
	publishAttempts.Add(float64(attempts))
	if fellBack {
		generationFallbacks.Inc()
	}
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
