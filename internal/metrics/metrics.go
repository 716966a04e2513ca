// Package metrics exposes booking workflow counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/campushub/resource-hub/internal/domain"
)

const namespace = "campushub"

// Recorder counts workflow events. It satisfies application.MetricsRecorder.
type Recorder struct {
	bookingCreated      *prometheus.CounterVec
	bookingTransition   *prometheus.CounterVec
	messageSent         prometheus.Counter
	notificationEmitted *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		bookingCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_created_total",
				Help:      "Count of bookings created by initial status.",
			},
			[]string{"status"},
		),
		bookingTransition: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_transition_total",
				Help:      "Count of booking lifecycle transitions by action.",
			},
			[]string{"action"},
		),
		messageSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "message_sent_total",
				Help:      "Count of booking thread messages sent.",
			},
		),
		notificationEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_emitted_total",
				Help:      "Count of notifications emitted by type.",
			},
			[]string{"type"},
		),
	}

	for _, c := range []prometheus.Collector{r.bookingCreated, r.bookingTransition, r.messageSent, r.notificationEmitted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) BookingCreated(status domain.BookingStatus) {
	r.bookingCreated.WithLabelValues(string(status)).Inc()
}

func (r *Recorder) BookingTransitioned(action domain.Action) {
	r.bookingTransition.WithLabelValues(string(action)).Inc()
}

func (r *Recorder) MessageSent() {
	r.messageSent.Inc()
}

func (r *Recorder) NotificationEmitted(typ domain.NotificationType) {
	r.notificationEmitted.WithLabelValues(string(typ)).Inc()
}
