package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
)

type messagingService interface {
	SendMessage(ctx context.Context, params application.SendMessageParams) (domain.Message, error)
	ListThread(ctx context.Context, principal application.Principal, bookingID string) ([]domain.Message, error)
	ListThreads(ctx context.Context, principal application.Principal) ([]application.ThreadSummary, error)
	MarkThreadRead(ctx context.Context, principal application.Principal, bookingID string) (int, error)
}

type MessageHandler struct {
	service   messagingService
	responder responder
}

func NewMessageHandler(service messagingService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{service: service, responder: newResponder(logger)}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	message, err := h.service.SendMessage(r.Context(), application.SendMessageParams{
		Principal: principal,
		BookingID: r.PathValue("id"),
		Content:   req.Content,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, messageResponse{Message: toMessageDTO(message)})
}

func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	messages, err := h.service.ListThread(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]messageDTO, 0, len(messages))
	for _, message := range messages {
		out = append(out, toMessageDTO(message))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMessagesResponse{Messages: out})
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	updated, err := h.service.MarkThreadRead(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, countResponse{Count: updated})
}

func (h *MessageHandler) Threads(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	summaries, err := h.service.ListThreads(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]threadSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, threadSummaryDTO{
			ThreadID:     summary.ThreadID,
			LastMessage:  toMessageDTO(summary.LastMessage),
			MessageCount: summary.MessageCount,
			UnreadCount:  summary.UnreadCount,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listThreadsResponse{Threads: out})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Message messageDTO `json:"message"`
}

type listMessagesResponse struct {
	Messages []messageDTO `json:"messages"`
}

type listThreadsResponse struct {
	Threads []threadSummaryDTO `json:"threads"`
}
