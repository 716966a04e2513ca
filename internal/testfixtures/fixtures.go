package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

var (
	userCounter     uint64
	resourceCounter uint64
	bookingCounter  uint64
)

// ----------------------------- User fixtures -----------------------------

// UserOption configures a generated user.
type UserOption func(*domain.User)

// NewUser returns a student account with a unique id and email.
func NewUser(opts ...UserOption) domain.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	user := domain.User{
		ID:         id,
		Email:      id + "@campus.example.edu",
		Name:       fmt.Sprintf("User %03d", idx),
		Role:       domain.RoleStudent,
		Department: "Computer Science",
		CreatedAt:  referenceTime.Add(-time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated id.
func WithUserID(id string) UserOption {
	return func(u *domain.User) { u.ID = id }
}

// WithUserName overrides the display name.
func WithUserName(name string) UserOption {
	return func(u *domain.User) { u.Name = name }
}

// WithUserEmail overrides the email address.
func WithUserEmail(email string) UserOption {
	return func(u *domain.User) { u.Email = email }
}

// WithRole sets the account role.
func WithRole(role domain.Role) UserOption {
	return func(u *domain.User) { u.Role = role }
}

// WithProfileImage sets the profile image URL.
func WithProfileImage(url string) UserOption {
	return func(u *domain.User) { u.ProfileImage = url }
}

// --------------------------- Resource fixtures ---------------------------

// ResourceOption configures a generated resource.
type ResourceOption func(*domain.Resource)

// NewResource returns a published study room owned by owner that accepts
// bookings without approval.
func NewResource(owner domain.User, opts ...ResourceOption) domain.Resource {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	resource := domain.Resource{
		ID:          fmt.Sprintf("resource-%03d", idx),
		Title:       fmt.Sprintf("Study Room %03d", idx),
		Description: "Quiet room with a whiteboard.",
		Category:    domain.CategoryStudyRoom,
		Location:    "Library, Floor 2",
		Capacity:    4,
		Status:      domain.ResourcePublished,
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		Equipment:   []string{"Whiteboard", "Projector"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// WithResourceID overrides the generated id.
func WithResourceID(id string) ResourceOption {
	return func(r *domain.Resource) { r.ID = id }
}

// WithResourceTitle overrides the title.
func WithResourceTitle(title string) ResourceOption {
	return func(r *domain.Resource) { r.Title = title }
}

// RequiringApproval marks the resource as needing owner approval.
func RequiringApproval() ResourceOption {
	return func(r *domain.Resource) { r.RequiresApproval = true }
}

// WithResourceStatus sets the catalog status.
func WithResourceStatus(status domain.ResourceStatus) ResourceOption {
	return func(r *domain.Resource) { r.Status = status }
}

// WithCategory sets the category.
func WithCategory(category domain.Category) ResourceOption {
	return func(r *domain.Resource) { r.Category = category }
}

// ---------------------------- Booking fixtures ---------------------------

// BookingOption configures a generated booking.
type BookingOption func(*domain.Booking)

// NewBooking returns an approved one hour booking of resource by requester,
// starting a day after ReferenceTime.
func NewBooking(resource domain.Resource, requester domain.User, opts ...BookingOption) domain.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := referenceTime.Add(24 * time.Hour)
	booking := domain.Booking{
		ID:            fmt.Sprintf("booking-%03d", idx),
		ResourceID:    resource.ID,
		ResourceTitle: resource.Title,
		UserID:        requester.ID,
		UserName:      requester.Name,
		Start:         start,
		End:           start.Add(time.Hour),
		Status:        domain.BookingApproved,
		Recurrence:    domain.RecurrenceNone,
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookingID overrides the generated id.
func WithBookingID(id string) BookingOption {
	return func(b *domain.Booking) { b.ID = id }
}

// WithBookingWindow sets start and end.
func WithBookingWindow(start, end time.Time) BookingOption {
	return func(b *domain.Booking) {
		b.Start = start
		b.End = end
	}
}

// WithBookingStatus sets the stored status.
func WithBookingStatus(status domain.BookingStatus) BookingOption {
	return func(b *domain.Booking) { b.Status = status }
}

// WithNotes sets the booking notes.
func WithNotes(notes string) BookingOption {
	return func(b *domain.Booking) { b.Notes = notes }
}

// ------------------------------ Store helpers -----------------------------

// MustCreateUsers inserts users into store or fails the test.
func MustCreateUsers(tb testing.TB, store persistence.Store, users ...domain.User) {
	tb.Helper()
	for _, u := range users {
		if err := store.Users().CreateUser(context.Background(), u); err != nil {
			tb.Fatalf("create user %s: %v", u.ID, err)
		}
	}
}

// MustCreateResources inserts resources into store or fails the test.
func MustCreateResources(tb testing.TB, store persistence.Store, resources ...domain.Resource) {
	tb.Helper()
	for _, r := range resources {
		if err := store.Resources().CreateResource(context.Background(), r); err != nil {
			tb.Fatalf("create resource %s: %v", r.ID, err)
		}
	}
}

// MustCreateBookings inserts bookings into store or fails the test.
func MustCreateBookings(tb testing.TB, store persistence.Store, bookings ...domain.Booking) {
	tb.Helper()
	for _, b := range bookings {
		if err := store.Bookings().CreateBooking(context.Background(), b); err != nil {
			tb.Fatalf("create booking %s: %v", b.ID, err)
		}
	}
}
