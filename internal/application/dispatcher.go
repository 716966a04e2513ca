package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

const bookingsLink = "/bookings"

// Dispatcher records notifications in the store. It runs synchronously inside
// the caller's transaction and has no outside delivery channel.
type Dispatcher struct {
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDispatcher constructs a dispatcher with the provided id and clock sources.
func NewDispatcher(idGenerator func() string, now func() time.Time, logger *slog.Logger) *Dispatcher {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// Emit validates input and stores a new unread notification through repo.
func (d *Dispatcher) Emit(ctx context.Context, repo persistence.NotificationRepository, input NotificationInput) (domain.Notification, error) {
	if d == nil {
		return domain.Notification{}, fmt.Errorf("Dispatcher is nil")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)
	if vErr := validateStruct(input); vErr.HasErrors() {
		return domain.Notification{}, vErr
	}

	notification := domain.Notification{
		ID:        d.idGenerator(),
		UserID:    input.Recipient,
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		Link:      strings.TrimSpace(input.Link),
		CreatedAt: d.now(),
	}
	if err := repo.CreateNotification(ctx, notification); err != nil {
		return domain.Notification{}, fmt.Errorf("store notification: %w", err)
	}

	serviceLogger(ctx, d.logger, "Dispatcher", "Emit",
		"notification_id", notification.ID,
		"recipient_id", notification.UserID,
		"type", notification.Type,
	).DebugContext(ctx, "notification emitted")
	return notification, nil
}

func bookingCreatedNotification(booking domain.Booking, resource domain.Resource) NotificationInput {
	if booking.Status == domain.BookingPending {
		owner := resource.OwnerName
		if owner == "" {
			owner = "the resource owner"
		}
		return NotificationInput{
			Recipient: booking.UserID,
			Type:      domain.NotificationBookingPending,
			Title:     "Booking Pending Approval",
			Message:   fmt.Sprintf("Your booking for %s is pending approval from %s.", resource.Title, owner),
			Link:      bookingsLink,
		}
	}
	return NotificationInput{
		Recipient: booking.UserID,
		Type:      domain.NotificationBookingConfirmed,
		Title:     "Booking Confirmed",
		Message:   fmt.Sprintf("Your booking for %s has been confirmed.", resource.Title),
		Link:      bookingsLink,
	}
}

// bookingDecisionNotification returns false for actions that notify nobody.
func bookingDecisionNotification(booking domain.Booking, action domain.Action) (NotificationInput, bool) {
	switch action {
	case domain.ActionApprove:
		return NotificationInput{
			Recipient: booking.UserID,
			Type:      domain.NotificationBookingApproved,
			Title:     "Booking Approved",
			Message:   fmt.Sprintf("Your booking for %s has been approved!", booking.ResourceTitle),
			Link:      bookingsLink,
		}, true
	case domain.ActionReject:
		return NotificationInput{
			Recipient: booking.UserID,
			Type:      domain.NotificationBookingRejected,
			Title:     "Booking Rejected",
			Message:   fmt.Sprintf("Your booking for %s has been rejected.", booking.ResourceTitle),
			Link:      bookingsLink,
		}, true
	}
	return NotificationInput{}, false
}
