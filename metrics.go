package skematree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts data-quality diagnostics. A nil *Metrics records nothing.
type Metrics struct {
	NodesCreated       *prometheus.CounterVec
	TypeMismatches     prometheus.Counter
	ValidationFailures prometheus.Counter
	References         *prometheus.CounterVec
	DuplicateIDs       prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		NodesCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "skematree",
				Name:      "nodes_created_total",
				Help:      "Nodes created, by kind",
			},
			[]string{"kind"},
		),
		TypeMismatches: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "skematree",
				Name:      "type_mismatches_total",
				Help:      "Inputs replaced by a default because their type did not match",
			},
		),
		ValidationFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "skematree",
				Name:      "validation_failures_total",
				Help:      "Assignments rejected by a constraint",
			},
		),
		References: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "skematree",
				Name:      "references_total",
				Help:      "Reference resolution attempts, by result",
			},
			[]string{"result"},
		),
		DuplicateIDs: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "skematree",
				Name:      "duplicate_ids_total",
				Help:      "Duplicate ids seen while serializing dynamic-key objects",
			},
		),
	}
}

// Reference results.
const (
	refResolved = "resolved"
	refWaiting  = "waiting"
	refMissing  = "missing"
	refCycle    = "cycle"
)

func (m *Metrics) nodeCreated(k Kind) {
	if m != nil {
		m.NodesCreated.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) typeMismatch() {
	if m != nil {
		m.TypeMismatches.Inc()
	}
}

func (m *Metrics) validationFailed() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

func (m *Metrics) reference(result string) {
	if m != nil {
		m.References.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) duplicateID() {
	if m != nil {
		m.DuplicateIDs.Inc()
	}
}
