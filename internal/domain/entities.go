package domain

import "time"

// Role classifies a campus account.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CanOwnResources reports whether accounts with this role may publish resources.
func (r Role) CanOwnResources() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Category groups bookable resources.
type Category string

const (
	CategoryStudyRoom    Category = "study-room"
	CategoryLabEquipment Category = "lab-equipment"
	CategoryEventSpace   Category = "event-space"
	CategoryAVEquipment  Category = "av-equipment"
	CategoryTutoring     Category = "tutoring"
	CategoryOther        Category = "other"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryStudyRoom, CategoryLabEquipment, CategoryEventSpace, CategoryAVEquipment, CategoryTutoring, CategoryOther:
		return true
	}
	return false
}

// ResourceStatus tracks the catalog lifecycle of a resource.
type ResourceStatus string

const (
	ResourceDraft     ResourceStatus = "draft"
	ResourcePublished ResourceStatus = "published"
	ResourceArchived  ResourceStatus = "archived"
)

// Valid reports whether the status is one of the known values.
func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourceDraft, ResourcePublished, ResourceArchived:
		return true
	}
	return false
}

// Recurrence is stored on a booking but never expanded into occurrences.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// Normalize maps the empty value to RecurrenceNone.
func (r Recurrence) Normalize() Recurrence {
	if r == "" {
		return RecurrenceNone
	}
	return r
}

// Valid reports whether the recurrence is one of the known values. The empty
// value is accepted and treated as RecurrenceNone.
func (r Recurrence) Valid() bool {
	switch r.Normalize() {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingPending   NotificationType = "booking_pending"
	NotificationBookingApproved  NotificationType = "booking_approved"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	// NewMessage and ReviewReceived are accepted on stored and seeded
	// notifications. Messaging never notifies and reviews are not written here,
	// so no workflow emits either type.
	NotificationNewMessage       NotificationType = "new_message"
	NotificationReviewReceived   NotificationType = "review_received"
)

// Valid reports whether the type is one of the known values.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationBookingConfirmed, NotificationBookingPending, NotificationBookingApproved,
		NotificationBookingRejected, NotificationNewMessage, NotificationReviewReceived:
		return true
	}
	return false
}

// User is a campus account. Login is a plain lookup; no credentials are held.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	Department   string
	ProfileImage string
	CreatedAt    time.Time
}

// Resource is a bookable campus asset.
type Resource struct {
	ID                string
	Title             string
	Description       string
	Category          Category
	Location          string
	Capacity          int
	Status            ResourceStatus
	OwnerID           string
	OwnerName         string
	Equipment         []string
	AvailabilityRules string
	RequiresApproval  bool
	Rating            float64
	ReviewCount       int
	BookingCount      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Booking reserves a resource for a time range on behalf of a requester.
type Booking struct {
	ID            string
	ResourceID    string
	ResourceTitle string
	UserID        string
	UserName      string
	Start         time.Time
	End           time.Time
	Status        BookingStatus
	Notes         string
	Recurrence    Recurrence
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Notification is a message addressed to one user as a side effect of a workflow transition.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Read      bool
	Link      string
	CreatedAt time.Time
}

// Message belongs to the thread of exactly one booking.
type Message struct {
	ID                   string
	ThreadID             string
	SenderID             string
	SenderName           string
	SenderProfileImage   string
	ReceiverID           string
	ReceiverName         string
	ReceiverProfileImage string
	Content              string
	Read                 bool
	CreatedAt            time.Time
}

// Review is a rating left by a user for a resource.
type Review struct {
	ID               string
	ResourceID       string
	UserID           string
	UserName         string
	UserProfileImage string
	Rating           int
	Comment          string
	CreatedAt        time.Time
}

// CloneResource returns a copy of the resource that shares no slices with the input.
func CloneResource(r Resource) Resource {
	out := r
	if r.Equipment != nil {
		out.Equipment = make([]string, len(r.Equipment))
		copy(out.Equipment, r.Equipment)
	}
	return out
}
