package application

import "github.com/campushub/resource-hub/internal/domain"

// MetricsRecorder receives workflow events after they commit.
type MetricsRecorder interface {
	BookingCreated(status domain.BookingStatus)
	BookingTransitioned(action domain.Action)
	MessageSent()
	NotificationEmitted(typ domain.NotificationType)
}

type noopMetrics struct{}

func (noopMetrics) BookingCreated(domain.BookingStatus)         {}
func (noopMetrics) BookingTransitioned(domain.Action)           {}
func (noopMetrics) MessageSent()                                {}
func (noopMetrics) NotificationEmitted(domain.NotificationType) {}

func defaultMetrics(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
