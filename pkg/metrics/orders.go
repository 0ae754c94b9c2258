package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts reservation outcomes, lifecycle transitions and notification deliveries.
type OrderMetrics struct {
	reservations  *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_reservations_total",
		Help: "Reservation attempts by outcome (reserved or the first failure reason).",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Applied order transitions by field and target status.",
	}, []string{"field", "to"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifications_total",
		Help: "Notification payloads by outcome (sent, duplicate, failed).",
	}, []string{"outcome"})
	reg.MustRegister(reservations, transitions, notifications)
	return &OrderMetrics{
		reservations:  reservations,
		transitions:   transitions,
		notifications: notifications,
	}
}

func (m *OrderMetrics) IncReservation(outcome string) {
	if m == nil || m.reservations == nil {
		return
	}
	m.reservations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *OrderMetrics) IncTransition(field, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(field), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) IncNotification(outcome string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}
