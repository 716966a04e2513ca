package persistence

import (
	"context"

	"github.com/campushub/resource-hub/internal/domain"
)

// UserRepository stores campus accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ResourceFilter narrows resource queries. Zero fields match everything.
type ResourceFilter struct {
	Status   domain.ResourceStatus
	Category domain.Category
	OwnerID  string
}

// ResourceRepository stores the resource catalog. Resources are never hard-deleted.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource domain.Resource) error
	UpdateResource(ctx context.Context, resource domain.Resource) error
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	ListResources(ctx context.Context, filter ResourceFilter) ([]domain.Resource, error)
}

// BookingFilter narrows booking queries. Statuses match stored values only.
// A non-nil empty ResourceIDs matches nothing.
type BookingFilter struct {
	UserID      string
	ResourceIDs []string
	Statuses    []domain.BookingStatus
}

// BookingRepository stores bookings ordered by start time.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking domain.Booking) error
	UpdateBooking(ctx context.Context, booking domain.Booking) error
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
}

// NotificationFilter narrows notification queries. Limit <= 0 means unlimited.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
}

// NotificationRepository stores notifications. Lists are most recent first.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification domain.Notification) error
	UpdateNotification(ctx context.Context, notification domain.Notification) error
	GetNotification(ctx context.Context, id string) (domain.Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
}

// MessageFilter narrows message queries. ParticipantID matches sender or receiver.
type MessageFilter struct {
	ThreadID      string
	ParticipantID string
}

// MessageRepository stores booking thread messages in chronological order.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message domain.Message) error
	UpdateMessage(ctx context.Context, message domain.Message) error
	ListMessages(ctx context.Context, filter MessageFilter) ([]domain.Message, error)
}

// ReviewRepository stores resource reviews. One review per user and resource.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review domain.Review) error
	ListReviews(ctx context.Context, resourceID string) ([]domain.Review, error)
}

// Repositories groups the collections of the entity store.
type Repositories interface {
	Users() UserRepository
	Resources() ResourceRepository
	Bookings() BookingRepository
	Notifications() NotificationRepository
	Messages() MessageRepository
	Reviews() ReviewRepository
}

// Store is the entity store. WithinTx runs fn against repositories whose
// writes are committed together when fn returns nil and discarded otherwise.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Close() error
}
