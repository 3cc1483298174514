package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts backend requests and times generation.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	generationTimes *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptpad",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total /chat and /complete requests by outcome",
		}, []string{"endpoint", "status"}),
		generationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "promptpad",
			Subsystem: "backend",
			Name:      "generation_seconds",
			Help:      "Time spent waiting on the generator",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.generationTimes)
	return m
}

func (m *Metrics) ObserveRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, statusLabel(status)).Inc()
}

func (m *Metrics) ObserveGeneration(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.generationTimes.WithLabelValues(endpoint).Observe(seconds)
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
