package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the portal's prometheus collectors
type Metrics struct {
	ProviderCalls        *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
	CacheLookups         *prometheus.CounterVec
	CustomersResolved    *prometheus.CounterVec
	BreakerState         *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_provider_calls_total",
			Help: "Billing provider calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		ProviderCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_provider_call_duration_seconds",
			Help:    "Billing provider call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_cache_lookups_total",
			Help: "Cache lookups by entity kind and result",
		}, []string{"kind", "result"}),
		CustomersResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_customers_resolved_total",
			Help: "Customer resolutions by the step that produced the record",
		}, []string{"source"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portal_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),
	}
}

// RecordProviderCall is safe on a nil receiver
func (m *Metrics) RecordProviderCall(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProviderCalls.WithLabelValues(operation, outcome).Inc()
	m.ProviderCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecordResolution(source string) {
	if m == nil {
		return
	}
	m.CustomersResolved.WithLabelValues(source).Inc()
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(state)
}
