package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order-workflow outcomes.
type OrderMetrics struct {
	ordersCreated *prometheus.CounterVec
	verifications *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewOrderMetrics registers the order workflow counters on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Confirmed orders by payment option.",
	}, []string{"payment_option"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment verification attempts by result.",
	}, []string{"result"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifications_total",
		Help: "Notification dispatch attempts by channel and result.",
	}, []string{"channel", "result"})

	reg.MustRegister(created, verifications, notifications)

	return &OrderMetrics{
		ordersCreated: created,
		verifications: verifications,
		notifications: notifications,
	}
}

// IncOrderCreated counts a confirmed order.
func (m *OrderMetrics) IncOrderCreated(paymentOption string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(paymentOption)).Inc()
}

// IncVerification counts a payment verification attempt.
func (m *OrderMetrics) IncVerification(result string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncNotification counts a notification dispatch attempt.
func (m *OrderMetrics) IncNotification(channel, result string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(channel), normalizeLabel(result)).Inc()
}
