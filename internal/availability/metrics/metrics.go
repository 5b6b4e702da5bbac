package metrics

import "github.com/prometheus/client_golang/prometheus"

// AvailabilityMetrics exposes counters and histograms for slot computations.
// A nil receiver is a no-op so callers and tests can omit it.
type AvailabilityMetrics struct {
	computations  *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	sourceErrors  *prometheus.CounterVec
	superseded    prometheus.Counter
	invalidations *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "computations_total",
			Help:      "Slot computations by outcome",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "cache_lookups_total",
			Help:      "Slot cache lookups by result",
		}, []string{"result"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "source_errors_total",
			Help:      "Failed data source reads by input",
		}, []string{"input"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "superseded_total",
			Help:      "Results discarded because a newer request replaced them",
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "cache_invalidations_total",
			Help:      "Cache invalidations by triggering event type",
		}, []string{"event_type"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "breaker_open",
			Help:      "1 while the data source circuit breaker is not closed",
		}, []string{"breaker"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "computation_seconds",
			Help:      "Latency of slot computations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cached"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.computations, m.cacheLookups, m.sourceErrors, m.superseded, m.invalidations, m.breakerState, m.latency)
	return m
}

func (m *AvailabilityMetrics) ObserveComputation(outcome string, cached bool, seconds float64) {
	if m == nil {
		return
	}
	m.computations.WithLabelValues(outcome).Inc()
	label := "false"
	if cached {
		label = "true"
	}
	m.latency.WithLabelValues(label).Observe(seconds)
}

func (m *AvailabilityMetrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *AvailabilityMetrics) ObserveSourceError(input string) {
	if m == nil {
		return
	}
	m.sourceErrors.WithLabelValues(input).Inc()
}

func (m *AvailabilityMetrics) ObserveSuperseded() {
	if m == nil {
		return
	}
	m.superseded.Inc()
}

func (m *AvailabilityMetrics) ObserveInvalidation(eventType string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(eventType).Inc()
}

func (m *AvailabilityMetrics) ObserveBreakerState(name, state string) {
	if m == nil {
		return
	}
	v := 1.0
	if state == "closed" {
		v = 0
	}
	m.breakerState.WithLabelValues(name).Set(v)
}
