package domain

import (
	"errors"
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	// BookingCompleted is derived at read time from an approved booking whose
	// end has passed. It is never stored.
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether the status is any known value, derived or stored.
func (s BookingStatus) Valid() bool {
	return s.Stored() || s == BookingCompleted
}

// Stored reports whether the status may be persisted.
func (s BookingStatus) Stored() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still holds its time range.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingApproved
}

// Action is a command that moves a booking between stored states.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// ErrIllegalTransition is returned when an action is not permitted from the current state.
var ErrIllegalTransition = errors.New("domain: illegal booking transition")

var transitions = map[Action]map[BookingStatus]BookingStatus{
	ActionApprove: {BookingPending: BookingApproved},
	ActionReject:  {BookingPending: BookingRejected},
	ActionCancel: {
		BookingPending:  BookingCancelled,
		BookingApproved: BookingCancelled,
	},
}

// InitialStatus returns the status a new booking starts in.
func InitialStatus(requiresApproval bool) BookingStatus {
	if requiresApproval {
		return BookingPending
	}
	return BookingApproved
}

// Transition returns the status reached by applying action to from.
func Transition(from BookingStatus, action Action) (BookingStatus, error) {
	targets, ok := transitions[action]
	if !ok {
		return from, fmt.Errorf("%w: unknown action %q", ErrIllegalTransition, action)
	}
	to, ok := targets[from]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s a %s booking", ErrIllegalTransition, action, from)
	}
	return to, nil
}

// DisplayStatus projects the stored status onto what a reader should see at now.
func DisplayStatus(b Booking, now time.Time) BookingStatus {
	if b.Status == BookingApproved && b.End.Before(now) {
		return BookingCompleted
	}
	return b.Status
}

// ApprovalPolicy decides whether a booking by requester on resource needs owner sign-off.
type ApprovalPolicy func(resource Resource, requester User) bool

// ResourceFlagPolicy reads the per-resource approval gate.
func ResourceFlagPolicy(resource Resource, _ User) bool {
	return resource.RequiresApproval
}
