package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
)

// IdempotencyKeyHeader lets clients retry POST /bookings safely.
const IdempotencyKeyHeader = "Idempotency-Key"

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.BookingResult, error)
	Approve(ctx context.Context, params application.TransitionParams) (application.TransitionResult, error)
	Reject(ctx context.Context, params application.TransitionParams) (application.TransitionResult, error)
	Cancel(ctx context.Context, params application.TransitionParams) (application.TransitionResult, error)
}

type bookingQueries interface {
	GetBooking(ctx context.Context, principal application.Principal, bookingID string) (application.BookingView, error)
	ListBookings(ctx context.Context, principal application.Principal, query application.BookingQuery) ([]application.BookingView, error)
	UpcomingBookings(ctx context.Context, principal application.Principal) ([]application.BookingView, error)
	ListManagedBookings(ctx context.Context, principal application.Principal, status domain.BookingStatus) ([]application.BookingView, error)
}

type BookingHandler struct {
	service   bookingService
	queries   bookingQueries
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, queries bookingQueries, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, queries: queries, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal:      principal,
		Input:          req.toInput(),
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := createBookingResponse{
		Booking:  toBookingDTO(result.Booking),
		Warnings: toWarningDTOs(result.Warnings),
		Replayed: result.Replayed,
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	} else {
		n := toNotificationDTO(result.Notification)
		response.Notification = &n
	}
	if len(result.Warnings) > 0 {
		handlerLogger(r.Context(), h.logger, "BookingHandler", "Create", "booking_id", result.Booking.ID).
			InfoContext(r.Context(), "booking overlaps existing bookings", "overlaps", len(result.Warnings))
	}
	h.responder.writeJSON(r.Context(), w, status, response)
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.ActionApprove)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.ActionReject)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.ActionCancel)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, action domain.Action) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	op := h.service.Cancel
	switch action {
	case domain.ActionApprove:
		op = h.service.Approve
	case domain.ActionReject:
		op = h.service.Reject
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := op(r.Context(), application.TransitionParams{Principal: principal, BookingID: r.PathValue("id")})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := transitionResponse{Booking: toBookingDTO(result.Booking)}
	if result.Notification != nil {
		n := toNotificationDTO(*result.Notification)
		response.Notification = &n
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.queries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	view, err := h.queries.GetBooking(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(view)})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.queries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	values := r.URL.Query()
	principal, _ := PrincipalFromContext(r.Context())
	views, err := h.queries.ListBookings(r.Context(), principal, application.BookingQuery{
		UserID:     strings.TrimSpace(values.Get("user_id")),
		ResourceID: strings.TrimSpace(values.Get("resource_id")),
		Status:     domain.BookingStatus(strings.TrimSpace(values.Get("status"))),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(views)})
}

func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.queries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	views, err := h.queries.UpcomingBookings(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(views)})
}

func (h *BookingHandler) Managed(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.queries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	status := domain.BookingStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	views, err := h.queries.ListManagedBookings(r.Context(), principal, status)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(views)})
}

type bookingRequest struct {
	ResourceID string `json:"resource_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Notes      string `json:"notes"`
	Recurrence string `json:"recurrence"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		ResourceID: strings.TrimSpace(r.ResourceID),
		Start:      parseTime(r.Start),
		End:        parseTime(r.End),
		Notes:      r.Notes,
		Recurrence: domain.Recurrence(strings.TrimSpace(r.Recurrence)),
	}
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type createBookingResponse struct {
	Booking      bookingDTO           `json:"booking"`
	Notification *notificationDTO     `json:"notification,omitempty"`
	Warnings     []conflictWarningDTO `json:"warnings,omitempty"`
	Replayed     bool                 `json:"replayed"`
}

type transitionResponse struct {
	Booking      bookingDTO       `json:"booking"`
	Notification *notificationDTO `json:"notification,omitempty"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}
