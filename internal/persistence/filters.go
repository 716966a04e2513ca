package persistence

import (
	"slices"

	"github.com/campushub/resource-hub/internal/domain"
)

// Matches reports whether resource satisfies the filter.
func (f ResourceFilter) Matches(resource domain.Resource) bool {
	if f.Status != "" && resource.Status != f.Status {
		return false
	}
	if f.Category != "" && resource.Category != f.Category {
		return false
	}
	if f.OwnerID != "" && resource.OwnerID != f.OwnerID {
		return false
	}
	return true
}

// Matches reports whether booking satisfies the filter.
func (f BookingFilter) Matches(booking domain.Booking) bool {
	if f.UserID != "" && booking.UserID != f.UserID {
		return false
	}
	if f.ResourceIDs != nil && !slices.Contains(f.ResourceIDs, booking.ResourceID) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, booking.Status) {
		return false
	}
	return true
}

// Matches reports whether notification satisfies the filter. Limit is not applied.
func (f NotificationFilter) Matches(notification domain.Notification) bool {
	if f.UserID != "" && notification.UserID != f.UserID {
		return false
	}
	if f.UnreadOnly && notification.Read {
		return false
	}
	return true
}

// Matches reports whether message satisfies the filter.
func (f MessageFilter) Matches(message domain.Message) bool {
	if f.ThreadID != "" && message.ThreadID != f.ThreadID {
		return false
	}
	if f.ParticipantID != "" && message.SenderID != f.ParticipantID && message.ReceiverID != f.ParticipantID {
		return false
	}
	return true
}
