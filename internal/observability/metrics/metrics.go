package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for the booking dialogue.
type DialogueMetrics struct {
	turnsTotal    *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vedya",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total processed dialogue turns",
		}, []string{"stage", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vedya",
			Subsystem: "dialogue",
			Name:      "bookings_total",
			Help:      "Total booking commits",
		}, []string{"status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vedya",
			Subsystem: "dialogue",
			Name:      "llm_latency_seconds",
			Help:      "Latency of language model calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.llmLatency)
	return m
}

func (m *DialogueMetrics) ObserveTurn(stage, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, status).Inc()
}

func (m *DialogueMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *DialogueMetrics) ObserveLLMLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(stage).Observe(seconds)
}
