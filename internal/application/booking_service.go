package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/idempotency"
	"github.com/campushub/resource-hub/internal/persistence"
)

// IdempotencyStore remembers which booking a client supplied key produced.
type IdempotencyStore interface {
	// Reserve claims key for a request with the given fingerprint. When the key
	// is already claimed it returns the existing record and false.
	Reserve(ctx context.Context, key, fingerprint string) (idempotency.Record, bool, error)
	// Complete attaches the created booking to a reserved key.
	Complete(ctx context.Context, key string, record idempotency.Record) error
	// Release drops a reservation so the client may retry.
	Release(ctx context.Context, key string) error
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Store       persistence.Store
	Dispatcher  *Dispatcher
	Approval    domain.ApprovalPolicy
	Idempotency IdempotencyStore
	Metrics     MetricsRecorder
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// BookingService runs the booking lifecycle: creation, approval, rejection,
// and cancellation, each with its single notification side effect.
type BookingService struct {
	store       persistence.Store
	dispatcher  *Dispatcher
	approval    domain.ApprovalPolicy
	idempotency IdempotencyStore
	metrics     MetricsRecorder
	locks       *keyedMutex
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(deps BookingServiceDeps) *BookingService {
	if deps.IDGenerator == nil {
		deps.IDGenerator = func() string { return "" }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Approval == nil {
		deps.Approval = domain.ResourceFlagPolicy
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = NewDispatcher(deps.IDGenerator, deps.Now, deps.Logger)
	}
	return &BookingService{
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		approval:    deps.Approval,
		idempotency: deps.Idempotency,
		metrics:     defaultMetrics(deps.Metrics),
		locks:       newKeyedMutex(),
		idGenerator: deps.IDGenerator,
		now:         deps.Now,
		logger:      defaultLogger(deps.Logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the request, stores the booking in its initial
// status, bumps the resource booking counter, and notifies the requester.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"resource_id", params.Input.ResourceID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create booking", err)
			return
		}
		logger.With(
			"booking_id", result.Booking.ID,
			"status", result.Booking.Status,
			"replayed", result.Replayed,
			"warning_count", len(result.Warnings),
		).InfoContext(ctx, "booking created")
	}()

	input := normalizeBookingInput(params.Input)
	vErr := validateStruct(input)
	validateTimeRange(vErr, input.Start, input.End)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	key := strings.TrimSpace(params.IdempotencyKey)
	if key == "" || s.idempotency == nil {
		result, err = s.createBooking(ctx, params.Principal, input)
		return
	}

	// Keys are scoped to the requester so two users cannot collide.
	scoped := params.Principal.UserID + ":" + key
	fingerprint := bookingFingerprint(params.Principal.UserID, input)

	unlock := s.locks.Lock("idempotency:" + scoped)
	defer unlock()

	record, reserved, err := s.idempotency.Reserve(ctx, scoped, fingerprint)
	if err != nil {
		err = fmt.Errorf("reserve idempotency key: %w", err)
		return
	}
	if !reserved {
		result, err = s.replay(ctx, record, fingerprint)
		return
	}

	// The key must settle even when the caller has gone away.
	settleCtx := context.WithoutCancel(ctx)

	result, err = s.createBooking(ctx, params.Principal, input)
	if err != nil {
		if relErr := s.idempotency.Release(settleCtx, scoped); relErr != nil {
			logger.WarnContext(ctx, "failed to release idempotency key", "error", relErr)
		}
		return
	}

	if cErr := s.idempotency.Complete(settleCtx, scoped, idempotency.Record{Fingerprint: fingerprint, BookingID: result.Booking.ID}); cErr != nil {
		logger.WarnContext(ctx, "failed to complete idempotency key", "error", cErr)
	}
	return
}

func (s *BookingService) replay(ctx context.Context, record idempotency.Record, fingerprint string) (BookingResult, error) {
	if record.Fingerprint != fingerprint {
		return BookingResult{}, fmt.Errorf("%w: key was used for a different booking request", ErrIdempotencyConflict)
	}
	if record.BookingID == "" {
		return BookingResult{}, fmt.Errorf("%w: original request is still in progress", ErrIdempotencyConflict)
	}

	booking, err := s.store.Bookings().GetBooking(ctx, record.BookingID)
	if err != nil {
		return BookingResult{}, mapRepoError("booking", record.BookingID, err)
	}
	return BookingResult{Booking: s.view(booking), Replayed: true}, nil
}

func (s *BookingService) createBooking(ctx context.Context, principal Principal, input BookingInput) (BookingResult, error) {
	var (
		result   BookingResult
		resource domain.Resource
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		var err error
		resource, err = tx.Resources().GetResource(ctx, input.ResourceID)
		if err != nil {
			return mapRepoError("resource", input.ResourceID, err)
		}
		if resource.Status != domain.ResourcePublished {
			return fieldError("resource_id", "resource is not open for booking")
		}

		requester, err := tx.Users().GetUser(ctx, principal.UserID)
		if err != nil {
			return mapRepoError("user", principal.UserID, err)
		}

		now := s.now()
		booking := domain.Booking{
			ID:            s.idGenerator(),
			ResourceID:    resource.ID,
			ResourceTitle: resource.Title,
			UserID:        requester.ID,
			UserName:      requester.Name,
			Start:         input.Start,
			End:           input.End,
			Status:        domain.InitialStatus(s.approval(resource, requester)),
			Notes:         input.Notes,
			Recurrence:    input.Recurrence,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		active, err := tx.Bookings().ListBookings(ctx, persistence.BookingFilter{
			ResourceIDs: []string{resource.ID},
			Statuses:    []domain.BookingStatus{domain.BookingPending, domain.BookingApproved},
		})
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		result.Warnings = toConflictWarnings(domain.DetectOverlaps(active, booking))

		if err := tx.Bookings().CreateBooking(ctx, booking); err != nil {
			return mapRepoError("booking", booking.ID, err)
		}

		resource.BookingCount++
		resource.UpdatedAt = now
		if err := tx.Resources().UpdateResource(ctx, resource); err != nil {
			return mapRepoError("resource", resource.ID, err)
		}

		notification, err := s.dispatcher.Emit(ctx, tx.Notifications(), bookingCreatedNotification(booking, resource))
		if err != nil {
			return err
		}

		result.Booking = s.view(booking)
		result.Notification = notification
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	s.metrics.BookingCreated(result.Booking.Status)
	s.metrics.NotificationEmitted(result.Notification.Type)
	return result, nil
}

// Approve moves a pending booking to approved. Only the resource owner or an
// administrator may approve.
func (s *BookingService) Approve(ctx context.Context, params TransitionParams) (TransitionResult, error) {
	return s.transition(ctx, "Approve", domain.ActionApprove, params)
}

// Reject moves a pending booking to rejected. Only the resource owner or an
// administrator may reject.
func (s *BookingService) Reject(ctx context.Context, params TransitionParams) (TransitionResult, error) {
	return s.transition(ctx, "Reject", domain.ActionReject, params)
}

// Cancel withdraws a pending or approved booking. Only the requester or an
// administrator may cancel. Nobody is notified and the resource booking
// counter keeps its value.
func (s *BookingService) Cancel(ctx context.Context, params TransitionParams) (TransitionResult, error) {
	return s.transition(ctx, "Cancel", domain.ActionCancel, params)
}

func (s *BookingService) transition(ctx context.Context, operation string, action domain.Action, params TransitionParams) (result TransitionResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "booking transition failed", err)
			return
		}
		logger.With("status", result.Booking.Status).InfoContext(ctx, "booking transitioned")
	}()

	unlock := s.locks.Lock(params.BookingID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		booking, err := tx.Bookings().GetBooking(ctx, params.BookingID)
		if err != nil {
			return mapRepoError("booking", params.BookingID, err)
		}
		resource, err := tx.Resources().GetResource(ctx, booking.ResourceID)
		if err != nil {
			return mapRepoError("resource", booking.ResourceID, err)
		}
		if !mayTransition(params.Principal, action, booking, resource) {
			return ErrUnauthorized
		}

		next, err := domain.Transition(booking.Status, action)
		if err != nil {
			return &TransitionError{BookingID: booking.ID, From: booking.Status, Op: action}
		}

		booking.Status = next
		booking.UpdatedAt = s.now()
		if err := tx.Bookings().UpdateBooking(ctx, booking); err != nil {
			return mapRepoError("booking", booking.ID, err)
		}

		result = TransitionResult{Booking: s.view(booking)}
		if input, ok := bookingDecisionNotification(booking, action); ok {
			notification, err := s.dispatcher.Emit(ctx, tx.Notifications(), input)
			if err != nil {
				return err
			}
			result.Notification = &notification
		}
		return nil
	})
	if err != nil {
		result = TransitionResult{}
		return
	}

	s.metrics.BookingTransitioned(action)
	if result.Notification != nil {
		s.metrics.NotificationEmitted(result.Notification.Type)
	}
	return
}

func mayTransition(principal Principal, action domain.Action, booking domain.Booking, resource domain.Resource) bool {
	if principal.IsAdmin() {
		return true
	}
	if action == domain.ActionCancel {
		return principal.UserID == booking.UserID
	}
	return principal.UserID == resource.OwnerID
}

func (s *BookingService) view(booking domain.Booking) BookingView {
	return BookingView{Booking: booking, DisplayStatus: domain.DisplayStatus(booking, s.now())}
}

func normalizeBookingInput(input BookingInput) BookingInput {
	return BookingInput{
		ResourceID: strings.TrimSpace(input.ResourceID),
		Start:      input.Start.UTC(),
		End:        input.End.UTC(),
		Notes:      strings.TrimSpace(input.Notes),
		Recurrence: input.Recurrence.Normalize(),
	}
}

func bookingFingerprint(requesterID string, input BookingInput) string {
	return idempotency.Fingerprint(
		requesterID,
		input.ResourceID,
		input.Start.Format(time.RFC3339Nano),
		input.End.Format(time.RFC3339Nano),
		input.Notes,
		string(input.Recurrence),
	)
}

func toConflictWarnings(overlaps []domain.Overlap) []ConflictWarning {
	if len(overlaps) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, 0, len(overlaps))
	for _, o := range overlaps {
		warnings = append(warnings, ConflictWarning{
			BookingID:  o.WithBookingID,
			ResourceID: o.ResourceID,
			UserID:     o.UserID,
			Start:      o.Start,
			End:        o.End,
		})
	}
	return warnings
}
