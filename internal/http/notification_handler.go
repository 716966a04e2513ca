package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
)

type notificationService interface {
	List(ctx context.Context, principal application.Principal, query application.NotificationQuery) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, principal application.Principal) (int, error)
	MarkRead(ctx context.Context, principal application.Principal, notificationID string) (domain.Notification, error)
	MarkAllRead(ctx context.Context, principal application.Principal) (int, error)
}

type NotificationHandler struct {
	service   notificationService
	responder responder
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, responder: newResponder(logger)}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query, err := parseNotificationQuery(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadQuery)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	notifications, err := h.service.List(r.Context(), principal, query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]notificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, toNotificationDTO(notification))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listNotificationsResponse{Notifications: out})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	count, err := h.service.UnreadCount(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, countResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	notification, err := h.service.MarkRead(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{Notification: toNotificationDTO(notification)})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	updated, err := h.service.MarkAllRead(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, countResponse{Count: updated})
}

func parseNotificationQuery(r *http.Request) (application.NotificationQuery, error) {
	values := r.URL.Query()
	var query application.NotificationQuery

	if raw := strings.TrimSpace(values.Get("unread_only")); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return query, err
		}
		query.UnreadOnly = unread
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, errBadQuery
		}
		query.Limit = limit
	}
	return query, nil
}

type notificationResponse struct {
	Notification notificationDTO `json:"notification"`
}

type listNotificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}
