/*
Package metrics exports pool activity to Prometheus.

	reg := prometheus.NewRegistry()
	p, _ := resourcepool.New(300, resourcepool.WithMetrics(metrics.NewPrometheus(reg, "respool")))
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cohmetrix/resource-pool/types"
)

// Prometheus implements types.Metrics with one series per resource name.
type Prometheus struct {
	hits       *prometheus.CounterVec
	misses     *prometheus.CounterVec
	evictions  *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	hookErrors *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ types.Metrics = (*Prometheus)(nil)

// NewPrometheus registers the pool collectors on reg.
// It panics if they are already registered there, like promauto does.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	factory := promauto.With(reg)
	labels := []string{"resource"}

	return &Prometheus{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_hits_total",
			Help:      "Gets answered from the cache",
		}, labels),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_misses_total",
			Help:      "Gets that ran the resource hook",
		}, labels),
		evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_evictions_total",
			Help:      "Entries dropped from the unpinned tier",
		}, labels),
		duplicates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_duplicate_registrations_total",
			Help:      "Registrations that replaced an existing hook",
		}, labels),
		hookErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_hook_errors_total",
			Help:      "Hook invocations that returned an error",
		}, labels),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resource_hook_duration_seconds",
			Help:      "Hook wall time",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, labels),
	}
}

func (m *Prometheus) Hit(resource string)       { m.hits.WithLabelValues(resource).Inc() }
func (m *Prometheus) Miss(resource string)      { m.misses.WithLabelValues(resource).Inc() }
func (m *Prometheus) Eviction(resource string)  { m.evictions.WithLabelValues(resource).Inc() }
func (m *Prometheus) Duplicate(resource string) { m.duplicates.WithLabelValues(resource).Inc() }

func (m *Prometheus) HookDone(resource string, d time.Duration, err error) {
	m.duration.WithLabelValues(resource).Observe(d.Seconds())
	if err != nil {
		m.hookErrors.WithLabelValues(resource).Inc()
	}
}
