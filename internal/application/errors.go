package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidTransition is returned when a lifecycle precondition does not hold.
	ErrInvalidTransition = errors.New("application: invalid transition")
	// ErrAlreadyExists is returned when a record with the same identity is already stored.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrIdempotencyConflict is returned when an idempotency key is reused for a different request
	// or while the first request is still in flight.
	ErrIdempotencyConflict = errors.New("application: idempotency key conflict")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message per field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func fieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

// TransitionError reports an action attempted from a state that does not permit it.
type TransitionError struct {
	BookingID string
	From      domain.BookingStatus
	Op        domain.Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking %s in status %s", e.Op, e.BookingID, e.From)
}

// Unwrap exposes ErrInvalidTransition to errors.Is.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func notFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// mapRepoError translates persistence sentinels into application errors.
func mapRepoError(entity, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return notFound(entity, id)
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %s %s", ErrAlreadyExists, entity, id)
	}
	return err
}
