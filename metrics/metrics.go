package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the booking flow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BookingsTotal        *prometheus.CounterVec
	BookingDuration      prometheus.Histogram
	SweepCompletedTotal  prometheus.Counter
	SweepRunsTotal       *prometheus.CounterVec
	NotificationsTotal   *prometheus.CounterVec
	InquiriesTotal       *prometheus.CounterVec
	SignupsTotal         *prometheus.CounterVec
	ConnectedStaffSocket prometheus.Gauge
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restobook",
			Name:      "bookings_total",
			Help:      "Booking attempts by result (created, invalid, not_found, conflict, error)",
		}, []string{"result"}),

		BookingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "restobook",
			Name:      "booking_duration_seconds",
			Help:      "Time spent inside the locked booking section",
			Buckets:   prometheus.DefBuckets,
		}),

		SweepCompletedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "restobook",
			Subsystem: "sweeper",
			Name:      "completed_total",
			Help:      "Reservations promoted to Done by the sweeper",
		}),

		SweepRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restobook",
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Sweeper ticks by outcome (ok, error)",
		}, []string{"outcome"}),

		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restobook",
			Name:      "notifications_total",
			Help:      "Mail dispatches by kind and outcome",
		}, []string{"kind", "outcome"}),

		InquiriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restobook",
			Name:      "inquiries_total",
			Help:      "Contact form submissions by surface",
		}, []string{"surface"}),

		SignupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restobook",
			Name:      "signups_total",
			Help:      "Signup attempts by result",
		}, []string{"result"}),

		ConnectedStaffSocket: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "restobook",
			Name:      "floor_sockets",
			Help:      "Staff websocket connections currently open",
		}),
	}
}

func (m *Metrics) ObserveBooking(result string, started time.Time) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
	m.BookingDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) SweepRun(outcome string, completed int) {
	if m == nil {
		return
	}
	m.SweepRunsTotal.WithLabelValues(outcome).Inc()
	m.SweepCompletedTotal.Add(float64(completed))
}

func (m *Metrics) Notification(kind, outcome string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Inquiry(surface string) {
	if m == nil {
		return
	}
	m.InquiriesTotal.WithLabelValues(surface).Inc()
}

func (m *Metrics) Signup(result string) {
	if m == nil {
		return
	}
	m.SignupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SocketDelta(delta float64) {
	if m == nil {
		return
	}
	m.ConnectedStaffSocket.Add(delta)
}
