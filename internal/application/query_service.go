package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

// QueryService answers booking read models. Every result carries the status
// derived at the time of the query.
type QueryService struct {
	store  persistence.Store
	now    func() time.Time
	logger *slog.Logger
}

// NewQueryService constructs a query service.
func NewQueryService(store persistence.Store, now func() time.Time, logger *slog.Logger) *QueryService {
	if now == nil {
		now = time.Now
	}
	return &QueryService{store: store, now: now, logger: defaultLogger(logger)}
}

func (s *QueryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "QueryService", operation, attrs...)
}

// GetBooking returns one booking. The requester, the resource owner, and
// administrators may read it.
func (s *QueryService) GetBooking(ctx context.Context, principal Principal, bookingID string) (BookingView, error) {
	if s == nil {
		return BookingView{}, fmt.Errorf("QueryService is nil")
	}
	booking, err := s.store.Bookings().GetBooking(ctx, bookingID)
	if err != nil {
		return BookingView{}, mapRepoError("booking", bookingID, err)
	}
	if !principal.IsAdmin() && principal.UserID != booking.UserID {
		resource, err := s.store.Resources().GetResource(ctx, booking.ResourceID)
		if err != nil {
			return BookingView{}, mapRepoError("resource", booking.ResourceID, err)
		}
		if resource.OwnerID != principal.UserID {
			return BookingView{}, ErrUnauthorized
		}
	}
	return s.view(booking, s.now()), nil
}

// ListBookings returns bookings matching query ordered by start. Without
// filters a non-administrator sees their own bookings; a resource filter is
// allowed for the resource owner. Filtering by completed matches the derived state.
func (s *QueryService) ListBookings(ctx context.Context, principal Principal, query BookingQuery) (views []BookingView, err error) {
	if s == nil {
		err = fmt.Errorf("QueryService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListBookings",
		"principal_id", principal.UserID,
		"user_id", query.UserID,
		"resource_id", query.ResourceID,
		"status", query.Status,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to list bookings", err)
			return
		}
		logger.With("result_count", len(views)).DebugContext(ctx, "bookings listed")
	}()

	if query.Status != "" && !query.Status.Valid() {
		err = fieldError("status", "status is invalid")
		return
	}

	filter := persistence.BookingFilter{UserID: query.UserID}
	if query.ResourceID != "" {
		filter.ResourceIDs = []string{query.ResourceID}
	}

	if !principal.IsAdmin() {
		switch {
		case query.ResourceID != "":
			var resource domain.Resource
			resource, err = s.store.Resources().GetResource(ctx, query.ResourceID)
			if err != nil {
				err = mapRepoError("resource", query.ResourceID, err)
				return
			}
			if resource.OwnerID != principal.UserID && query.UserID != principal.UserID {
				err = ErrUnauthorized
				return
			}
		case query.UserID == "":
			filter.UserID = principal.UserID
		case query.UserID != principal.UserID:
			err = ErrUnauthorized
			return
		}
	}

	if query.Status != "" {
		filter.Statuses = []domain.BookingStatus{storedStatus(query.Status)}
	}

	var bookings []domain.Booking
	bookings, err = s.store.Bookings().ListBookings(ctx, filter)
	if err != nil {
		return
	}

	views = s.views(bookings, query.Status)
	return
}

// UpcomingBookings returns the principal's active bookings that have not
// started yet, soonest first.
func (s *QueryService) UpcomingBookings(ctx context.Context, principal Principal) ([]BookingView, error) {
	if s == nil {
		return nil, fmt.Errorf("QueryService is nil")
	}

	bookings, err := s.store.Bookings().ListBookings(ctx, persistence.BookingFilter{
		UserID:   principal.UserID,
		Statuses: []domain.BookingStatus{domain.BookingApproved, domain.BookingPending},
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		if b.Start.After(now) {
			views = append(views, s.view(b, now))
		}
	}
	return views, nil
}

// ListManagedBookings returns bookings on resources the principal owns,
// optionally narrowed to one status.
func (s *QueryService) ListManagedBookings(ctx context.Context, principal Principal, status domain.BookingStatus) ([]BookingView, error) {
	if s == nil {
		return nil, fmt.Errorf("QueryService is nil")
	}
	if status != "" && !status.Valid() {
		return nil, fieldError("status", "status is invalid")
	}

	owned, err := s.store.Resources().ListResources(ctx, persistence.ResourceFilter{OwnerID: principal.UserID})
	if err != nil {
		return nil, err
	}

	filter := persistence.BookingFilter{ResourceIDs: make([]string, 0, len(owned))}
	for _, r := range owned {
		filter.ResourceIDs = append(filter.ResourceIDs, r.ID)
	}
	if status != "" {
		filter.Statuses = []domain.BookingStatus{storedStatus(status)}
	}

	bookings, err := s.store.Bookings().ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.views(bookings, status), nil
}

func (s *QueryService) views(bookings []domain.Booking, status domain.BookingStatus) []BookingView {
	now := s.now()
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		v := s.view(b, now)
		if status != "" && v.DisplayStatus != status {
			continue
		}
		views = append(views, v)
	}
	return views
}

func (s *QueryService) view(booking domain.Booking, now time.Time) BookingView {
	return BookingView{Booking: booking, DisplayStatus: domain.DisplayStatus(booking, now)}
}

// storedStatus maps a display status to the stored status it is derived from.
func storedStatus(status domain.BookingStatus) domain.BookingStatus {
	if status == domain.BookingCompleted {
		return domain.BookingApproved
	}
	return status
}
