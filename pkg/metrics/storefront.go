package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records request timings and order pipeline outcomes.
type StorefrontMetrics struct {
	requestDuration *prometheus.HistogramVec
	ordersPlaced    prometheus.Counter
	ordersRolledBck prometheus.Counter
	paymentFailures prometheus.Counter
	emailFailures   prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders committed by the checkout pipeline.",
	})
	ordersRolledBack := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_rolled_back_total",
		Help: "Orders removed after payment initiation failed.",
	})
	paymentFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_link_failures_total",
		Help: "Failed payment link initiations.",
	})
	emailFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_email_failures_total",
		Help: "Order confirmation emails that could not be sent.",
	})
	reg.MustRegister(requestDuration, ordersPlaced, ordersRolledBack, paymentFailures, emailFailures)
	return &StorefrontMetrics{
		requestDuration: requestDuration,
		ordersPlaced:    ordersPlaced,
		ordersRolledBck: ordersRolledBack,
		paymentFailures: paymentFailures,
		emailFailures:   emailFailures,
	}
}

// ObserveRequest records the duration of a handled HTTP request.
func (m *StorefrontMetrics) ObserveRequest(method, route, status string, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(method), normalizeLabel(route), normalizeLabel(status)).Observe(duration.Seconds())
}

// IncOrdersPlaced increments the committed order counter.
func (m *StorefrontMetrics) IncOrdersPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOrdersRolledBack increments the compensated order counter.
func (m *StorefrontMetrics) IncOrdersRolledBack() {
	if m == nil || m.ordersRolledBck == nil {
		return
	}
	m.ordersRolledBck.Inc()
}

// IncPaymentFailures increments the failed payment initiation counter.
func (m *StorefrontMetrics) IncPaymentFailures() {
	if m == nil || m.paymentFailures == nil {
		return
	}
	m.paymentFailures.Inc()
}

// IncEmailFailures increments the confirmation email failure counter.
func (m *StorefrontMetrics) IncEmailFailures() {
	if m == nil || m.emailFailures == nil {
		return
	}
	m.emailFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
