package metrics

import "github.com/prometheus/client_golang/prometheus"

// SettlementMetrics tracks bulk window settlement outcomes.
type SettlementMetrics struct {
	windowsSettled *prometheus.CounterVec
	ordersSettled  *prometheus.CounterVec
	debitFailures  prometheus.Counter
}

// NewSettlementMetrics registers settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	windows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_windows_total",
		Help: "Bulk order windows swept, by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_orders_total",
		Help: "Orders settled during window sweeps, by payment outcome.",
	}, []string{"outcome"})
	debitFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_debit_failures_total",
		Help: "Orders that failed settlement because the buyer balance was short.",
	})
	reg.MustRegister(windows, orders, debitFailures)
	return &SettlementMetrics{
		windowsSettled: windows,
		ordersSettled:  orders,
		debitFailures:  debitFailures,
	}
}

// IncWindow records a swept window with the given outcome label.
func (s *SettlementMetrics) IncWindow(outcome string) {
	if s == nil || s.windowsSettled == nil {
		return
	}
	s.windowsSettled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrder records a settled order with the given payment outcome.
func (s *SettlementMetrics) IncOrder(outcome string) {
	if s == nil || s.ordersSettled == nil {
		return
	}
	s.ordersSettled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncDebitFailure counts an insufficient-balance debit during settlement.
func (s *SettlementMetrics) IncDebitFailure() {
	if s == nil || s.debitFailures == nil {
		return
	}
	s.debitFailures.Inc()
}
