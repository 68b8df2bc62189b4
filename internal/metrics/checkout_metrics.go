package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики транзакций оформления заказов.
type CheckoutMetrics struct {
	ordersPlaced   prometheus.Counter
	ordersRejected *prometheus.CounterVec
	stockConflicts prometheus.Counter
	placeDuration  prometheus.Histogram
}

// Причины отказа для метрики shopcore_orders_rejected_total.
const (
	RejectReasonValidation  = "validation"
	RejectReasonCustomer    = "customer_not_found"
	RejectReasonStock       = "stock"
	RejectReasonTransaction = "transaction"
)

// NewCheckoutMetrics регистрирует метрики оформления в реестре по умолчанию.
func NewCheckoutMetrics() *CheckoutMetrics {
	return NewCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCheckoutMetricsWithRegisterer позволяет подменить реестр в тестах.
func NewCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_orders_placed_total",
			Help: "Total number of orders committed by the checkout coordinator",
		}),
		ordersRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shopcore_orders_rejected_total",
			Help: "Total number of rejected place-order requests by reason",
		}, []string{"reason"}),
		stockConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_stock_conflicts_total",
			Help: "Total number of conditional stock decrements that failed",
		}),
		placeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shopcore_place_order_duration_seconds",
			Help:    "Latency of place-order transactions",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordOrderPlaced увеличивает счётчик успешно оформленных заказов.
func (m *CheckoutMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderRejected увеличивает счётчик отказов по причине.
func (m *CheckoutMetrics) RecordOrderRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordStockConflict увеличивает счётчик неуспешных условных декрементов.
func (m *CheckoutMetrics) RecordStockConflict() {
	m.stockConflicts.Inc()
}

// RecordPlaceDuration записывает длительность транзакции оформления.
func (m *CheckoutMetrics) RecordPlaceDuration(duration time.Duration) {
	m.placeDuration.Observe(duration.Seconds())
}
