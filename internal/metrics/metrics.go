// Package metrics holds the prometheus counters of the posting engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics owns a private registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	postings     *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	placeholders *prometheus.CounterVec
	payments     *prometheus.CounterVec
	unapplied    prometheus.Counter
}

// New creates and registers all counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		postings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerengine_postings_total",
				Help: "Posting lines produced, by transaction type.",
			},
			[]string{"type"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerengine_rejected_requests_total",
				Help: "Transaction requests rejected before resolution, by reason.",
			},
			[]string{"reason"},
		),
		placeholders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerengine_placeholders_total",
				Help: "Placeholder accounts provisioned, by usage role.",
			},
			[]string{"role"},
		),
		payments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerengine_payments_total",
				Help: "Loan payments allocated, by outcome.",
			},
			[]string{"outcome"},
		),
		unapplied: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledgerengine_unapplied_amount_total",
				Help: "Payment amount left unapplied because the loan was fully covered.",
			},
		),
	}
}

// PostingsProduced counts n posting lines for a transaction type.
func (m *Metrics) PostingsProduced(txType string, n int) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(txType).Add(float64(n))
}

// RequestRejected counts a request rejected for reason ("validation", "type").
func (m *Metrics) RequestRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// PlaceholderProvisioned counts a newly created placeholder account.
func (m *Metrics) PlaceholderProvisioned(role string) {
	if m == nil {
		return
	}
	m.placeholders.WithLabelValues(role).Inc()
}

// PaymentAllocated counts a payment by outcome ("partial", "settled", "overpaid").
func (m *Metrics) PaymentAllocated(outcome string, unapplied decimal.Decimal) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(outcome).Inc()
	if unapplied.IsPositive() {
		m.unapplied.Add(unapplied.InexactFloat64())
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
