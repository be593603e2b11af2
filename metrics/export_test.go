package metrics

import "github.com/prometheus/client_golang/prometheus"

type collectors struct {
	Hits, Misses, Evictions, Duplicates, HookErrors *prometheus.CounterVec
	Duration                                        *prometheus.HistogramVec
}

func (m *Prometheus) Counters() collectors {
	return collectors{
		Hits:       m.hits,
		Misses:     m.misses,
		Evictions:  m.evictions,
		Duplicates: m.duplicates,
		HookErrors: m.hookErrors,
		Duration:   m.duration,
	}
}
