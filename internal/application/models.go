package application

import (
	"time"

	"github.com/campushub/resource-hub/internal/domain"
)

// Principal represents the user invoking a service method.
type Principal struct {
	UserID string
	Name   string
	Role   domain.Role
}

// IsAdmin reports whether the principal holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// PrincipalFromUser builds the principal for a stored user.
func PrincipalFromUser(user domain.User) Principal {
	return Principal{UserID: user.ID, Name: user.Name, Role: user.Role}
}

// BookingView pairs a stored booking with the status a reader should see.
type BookingView struct {
	domain.Booking
	DisplayStatus domain.BookingStatus
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	ResourceID string `validate:"required"`
	Start      time.Time
	End        time.Time
	Notes      string            `validate:"max=2000"`
	Recurrence domain.Recurrence `validate:"omitempty,recurrence"`
}

// CreateBookingParams wraps the data required to create a booking. An empty
// IdempotencyKey disables replay protection.
type CreateBookingParams struct {
	Principal      Principal
	Input          BookingInput
	IdempotencyKey string
}

// ConflictWarning describes an active booking that overlaps a newly created one.
// Overlaps are reported, never rejected.
type ConflictWarning struct {
	BookingID  string
	ResourceID string
	UserID     string
	Start      time.Time
	End        time.Time
}

// BookingResult is returned by CreateBooking. Notification is the zero value
// when Replayed is set.
type BookingResult struct {
	Booking      BookingView
	Notification domain.Notification
	Warnings     []ConflictWarning
	Replayed     bool
}

// TransitionParams identifies the booking an approve, reject, or cancel targets.
type TransitionParams struct {
	Principal Principal
	BookingID string
}

// TransitionResult is returned by lifecycle commands. Notification is nil for
// transitions that notify nobody.
type TransitionResult struct {
	Booking      BookingView
	Notification *domain.Notification
}

// BookingQuery narrows booking listings. Status may name the derived completed state.
type BookingQuery struct {
	UserID     string
	ResourceID string
	Status     domain.BookingStatus
}

// NotificationInput is the payload handed to the dispatcher.
type NotificationInput struct {
	Recipient string                  `validate:"required"`
	Type      domain.NotificationType `validate:"notification_type"`
	Title     string                  `validate:"required"`
	Message   string                  `validate:"required"`
	Link      string
}

// NotificationQuery narrows notification listings. Limit <= 0 means unlimited.
type NotificationQuery struct {
	UnreadOnly bool
	Limit      int
}

// SendMessageParams wraps the data required to post to a booking thread.
type SendMessageParams struct {
	Principal Principal
	BookingID string
	Content   string
}

// ThreadSummary condenses one booking thread for the principal's inbox.
type ThreadSummary struct {
	ThreadID     string
	LastMessage  domain.Message
	MessageCount int
	UnreadCount  int
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	Title             string          `validate:"required,max=200"`
	Description       string          `validate:"required,max=5000"`
	Category          domain.Category `validate:"required,category"`
	Location          string          `validate:"required,max=200"`
	Capacity          int             `validate:"gt=0"`
	Equipment         []string        `validate:"max=50,dive,max=100"`
	AvailabilityRules string          `validate:"max=2000"`
	RequiresApproval  bool
	Status            domain.ResourceStatus `validate:"omitempty,oneof=draft published"`
}

// CreateResourceParams wraps the data required to create a resource.
type CreateResourceParams struct {
	Principal Principal
	Input     ResourceInput
}

// UpdateResourceParams wraps the data required to edit a resource.
type UpdateResourceParams struct {
	Principal  Principal
	ResourceID string
	Input      ResourceInput
}

// ResourceQuery narrows resource listings. Zero fields match everything.
type ResourceQuery struct {
	Status   domain.ResourceStatus
	Category domain.Category
	OwnerID  string
}

// UserProfileInput captures the editable profile fields.
type UserProfileInput struct {
	Name         string `validate:"required,max=120"`
	Department   string `validate:"max=120"`
	ProfileImage string `validate:"omitempty,max=2048,url"`
}

// UpdateUserProfileParams wraps the data required to update a profile.
type UpdateUserProfileParams struct {
	Principal Principal
	UserID    string
	Input     UserProfileInput
}
