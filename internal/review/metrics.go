package review

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects review engine counters. A single instance is shared by
// the engines of every kind; the kind is a label.
type Metrics struct {
	Decisions       *prometheus.CounterVec
	PrefetchLookups *prometheus.CounterVec
	LoadFailures    *prometheus.CounterVec
	Flushes         *prometheus.CounterVec
	QueueRemaining  *prometheus.GaugeVec
	TrashSize       *prometheus.GaugeVec
}

// NewMetrics builds the collectors and registers them with reg.
// A nil registerer leaves them unregistered (tests, metrics disabled).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culler_decisions_total",
				Help: "Total number of review decisions",
			},
			[]string{"kind", "decision"},
		),
		PrefetchLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culler_prefetch_lookups_total",
				Help: "Prefetch cache lookups when an item becomes current",
			},
			[]string{"kind", "result"},
		),
		LoadFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culler_load_failures_total",
				Help: "Renditions that could not be loaded",
			},
			[]string{"kind", "quality"},
		),
		Flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "culler_trash_flushes_total",
				Help: "Trash bin commits by outcome",
			},
			[]string{"kind", "status"},
		),
		QueueRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "culler_queue_remaining",
				Help: "Unseen items left in the review queue",
			},
			[]string{"kind"},
		),
		TrashSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "culler_trash_size",
				Help: "Items waiting in the trash bin",
			},
			[]string{"kind"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Decisions,
			m.PrefetchLookups,
			m.LoadFailures,
			m.Flushes,
			m.QueueRemaining,
			m.TrashSize,
		)
	}

	return m
}
