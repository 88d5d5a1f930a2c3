package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// LedgerMetrics records business operations against the ledger.
type LedgerMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	salesAmount *prometheus.CounterVec
	itemsSold   prometheus.Counter
	withdrawals *prometheus.CounterVec
	stockLevels *prometheus.GaugeVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_success_total",
		Help:      "Successful ledger operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_failure_total",
		Help:      "Failed ledger operations by error code.",
	}, []string{"operation", "code"})
	salesAmount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_amount_total",
		Help:      "Net sales amount by payment method.",
	}, []string{"payment_method"})
	itemsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_sold_total",
		Help:      "Units sold through committed sales.",
	})
	withdrawals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "withdrawal_events_total",
		Help:      "Withdrawal workflow steps by event.",
	}, []string{"event"})
	stockLevels := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_items",
		Help:      "Inventory items by derived stock status.",
	}, []string{"status"})
	reg.MustRegister(duration, success, failure, salesAmount, itemsSold, withdrawals, stockLevels)
	return &LedgerMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		salesAmount: salesAmount,
		itemsSold:   itemsSold,
		withdrawals: withdrawals,
		stockLevels: stockLevels,
	}
}

// Observe records the outcome of one operation. code is empty on success.
func (m *LedgerMetrics) Observe(operation string, took time.Duration, code string) {
	if m == nil || m.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(took.Seconds())
	if code == "" {
		m.success.WithLabelValues(op).Inc()
		return
	}
	m.failure.WithLabelValues(op, code).Inc()
}

// RecordSale adds a committed sale's net amount and units.
func (m *LedgerMetrics) RecordSale(paymentMethod string, amount float64, units int) {
	if m == nil || m.salesAmount == nil {
		return
	}
	m.salesAmount.WithLabelValues(normalizeLabel(paymentMethod)).Add(amount)
	m.itemsSold.Add(float64(units))
}

// RecordWithdrawal counts one withdrawal workflow step.
func (m *LedgerMetrics) RecordWithdrawal(event string) {
	if m == nil || m.withdrawals == nil {
		return
	}
	m.withdrawals.WithLabelValues(normalizeLabel(event)).Inc()
}

// SetStockLevels replaces the per-status item gauge.
func (m *LedgerMetrics) SetStockLevels(counts map[string]int) {
	if m == nil || m.stockLevels == nil {
		return
	}
	m.stockLevels.Reset()
	for status, n := range counts {
		m.stockLevels.WithLabelValues(normalizeLabel(status)).Set(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
