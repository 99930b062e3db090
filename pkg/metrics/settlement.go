package metrics

import "github.com/prometheus/client_golang/prometheus"

// SettlementMetrics tracks order lifecycle outcomes.
type SettlementMetrics struct {
	ordersCreated     prometheus.Counter
	ordersPaid        prometheus.Counter
	ordersCanceled    prometheus.Counter
	oversellRejected  prometheus.Counter
	staleReservations prometheus.Gauge
}

// NewSettlementMetrics registers order lifecycle metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	m := &SettlementMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created through checkout.",
		}),
		ordersPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_paid_total",
			Help: "Orders marked paid.",
		}),
		ordersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_canceled_total",
			Help: "Orders canceled before payment.",
		}),
		oversellRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkout_insufficient_stock_total",
			Help: "Checkouts rejected for insufficient availability.",
		}),
		staleReservations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stale_active_reservations",
			Help: "Active reservations older than the configured threshold.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.ordersPaid, m.ordersCanceled, m.oversellRejected, m.staleReservations)
	return m
}

func (m *SettlementMetrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *SettlementMetrics) IncOrdersPaid() {
	if m == nil || m.ordersPaid == nil {
		return
	}
	m.ordersPaid.Inc()
}

func (m *SettlementMetrics) IncOrdersCanceled() {
	if m == nil || m.ordersCanceled == nil {
		return
	}
	m.ordersCanceled.Inc()
}

func (m *SettlementMetrics) IncOversellRejected() {
	if m == nil || m.oversellRejected == nil {
		return
	}
	m.oversellRejected.Inc()
}

func (m *SettlementMetrics) SetStaleReservations(count int) {
	if m == nil || m.staleReservations == nil {
		return
	}
	m.staleReservations.Set(float64(count))
}
