// Package metrics exposes Prometheus instrumentation for ledger operations.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dangidongi"

// Result labels for Operations.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)

// Metrics holds the collectors for one process. Each instance owns its own
// registry so tests and embedded uses never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	Operations   *prometheus.CounterVec
	Participants prometheus.Gauge
	Transactions prometheus.Gauge
	PlanSize     prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger operations by name and result.",
		}, []string{"operation", "result"}),
		Participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants",
			Help:      "Participants currently in the ledger.",
		}),
		Transactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transactions",
			Help:      "Transactions currently in the ledger.",
		}),
		PlanSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_transfers",
			Help:      "Number of transfers in computed settlement plans.",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		}),
	}
	m.registry.MustRegister(m.Operations, m.Participants, m.Transactions, m.PlanSize)
	return m
}

// ObserveOperation counts one call of op; a non-nil err counts as rejected.
func (m *Metrics) ObserveOperation(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultRejected
	}
	m.Operations.WithLabelValues(op, result).Inc()
}

// SetLedgerSize records the current number of participants and transactions.
func (m *Metrics) SetLedgerSize(participants, transactions int) {
	m.Participants.Set(float64(participants))
	m.Transactions.Set(float64(transactions))
}

// ObservePlan records the size of a computed settlement plan.
func (m *Metrics) ObservePlan(transfers int) {
	m.PlanSize.Observe(float64(transfers))
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
