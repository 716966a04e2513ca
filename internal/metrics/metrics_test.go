package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/campushub/resource-hub/internal/domain"
)

func TestRecorderCountsEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	recorder.BookingCreated(domain.BookingPending)
	recorder.BookingCreated(domain.BookingPending)
	recorder.BookingCreated(domain.BookingApproved)
	recorder.BookingTransitioned(domain.ActionApprove)
	recorder.MessageSent()
	recorder.NotificationEmitted(domain.NotificationBookingPending)

	if got := testutil.ToFloat64(recorder.bookingCreated.WithLabelValues("pending")); got != 2 {
		t.Fatalf("expected 2 pending creations, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.messageSent); got != 1 {
		t.Fatalf("expected 1 message, got %v", got)
	}

	expected := `
# HELP campushub_booking_transition_total Count of booking lifecycle transitions by action.
# TYPE campushub_booking_transition_total counter
campushub_booking_transition_total{action="approve"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "campushub_booking_transition_total"); err != nil {
		t.Fatalf("unexpected transition metrics: %v", err)
	}
}

func TestNewRecorderRejectsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
