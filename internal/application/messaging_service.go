package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

const maxMessageLength = 4000

// MessagingService carries the two-party conversation attached to each booking.
// The thread id of a message is the id of its booking.
type MessagingService struct {
	store       persistence.Store
	metrics     MetricsRecorder
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// MessagingServiceDeps captures dependencies for constructing a messaging service.
type MessagingServiceDeps struct {
	Store       persistence.Store
	Metrics     MetricsRecorder
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewMessagingService wires dependencies for messaging operations.
func NewMessagingService(deps MessagingServiceDeps) *MessagingService {
	if deps.IDGenerator == nil {
		deps.IDGenerator = func() string { return "" }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &MessagingService{
		store:       deps.Store,
		metrics:     defaultMetrics(deps.Metrics),
		idGenerator: deps.IDGenerator,
		now:         deps.Now,
		logger:      defaultLogger(deps.Logger),
	}
}

func (s *MessagingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MessagingService", operation, attrs...)
}

// SendMessage appends a message to the booking thread. When the sender owns
// the resource the requester receives it; anyone else writes to the owner.
// Sending never produces a notification.
func (s *MessagingService) SendMessage(ctx context.Context, params SendMessageParams) (message domain.Message, err error) {
	if s == nil {
		err = fmt.Errorf("MessagingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SendMessage",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to send message", err)
			return
		}
		logger.With("message_id", message.ID, "receiver_id", message.ReceiverID).InfoContext(ctx, "message sent")
	}()

	content := strings.TrimSpace(params.Content)
	switch {
	case content == "":
		err = fieldError("content", "content is required")
		return
	case len([]rune(content)) > maxMessageLength:
		err = fieldError("content", fmt.Sprintf("content must be at most %d characters", maxMessageLength))
		return
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		booking, err := tx.Bookings().GetBooking(ctx, params.BookingID)
		if err != nil {
			return mapRepoError("booking", params.BookingID, err)
		}
		resource, err := tx.Resources().GetResource(ctx, booking.ResourceID)
		if err != nil {
			return mapRepoError("resource", booking.ResourceID, err)
		}

		senderID := params.Principal.UserID
		receiverID := resource.OwnerID
		receiverName := resource.OwnerName
		if senderID == resource.OwnerID {
			receiverID = booking.UserID
			receiverName = booking.UserName
		} else if senderID != booking.UserID {
			logger.WarnContext(ctx, "sender is not a party to the booking; delivering to the owner")
		}

		sender, err := lookupUser(ctx, tx.Users(), senderID)
		if err != nil {
			return err
		}
		receiver, err := lookupUser(ctx, tx.Users(), receiverID)
		if err != nil {
			return err
		}

		message = domain.Message{
			ID:                   s.idGenerator(),
			ThreadID:             booking.ID,
			SenderID:             senderID,
			SenderName:           firstNonEmpty(sender.Name, params.Principal.Name),
			SenderProfileImage:   sender.ProfileImage,
			ReceiverID:           receiverID,
			ReceiverName:         firstNonEmpty(receiver.Name, receiverName),
			ReceiverProfileImage: receiver.ProfileImage,
			Content:              content,
			CreatedAt:            s.now(),
		}
		return mapRepoError("message", message.ID, tx.Messages().CreateMessage(ctx, message))
	})
	if err != nil {
		message = domain.Message{}
		return
	}

	s.metrics.MessageSent()
	return
}

// ListThread returns the messages of one booking in chronological order. The
// booking parties, anyone who has written in the thread, and administrators may read it.
func (s *MessagingService) ListThread(ctx context.Context, principal Principal, bookingID string) ([]domain.Message, error) {
	if s == nil {
		return nil, fmt.Errorf("MessagingService is nil")
	}

	booking, err := s.store.Bookings().GetBooking(ctx, bookingID)
	if err != nil {
		return nil, mapRepoError("booking", bookingID, err)
	}
	resource, err := s.store.Resources().GetResource(ctx, booking.ResourceID)
	if err != nil {
		return nil, mapRepoError("resource", booking.ResourceID, err)
	}

	messages, err := s.store.Messages().ListMessages(ctx, persistence.MessageFilter{ThreadID: bookingID})
	if err != nil {
		return nil, err
	}

	if !mayReadThread(principal, booking, resource, messages) {
		s.loggerWith(ctx, "ListThread", "principal_id", principal.UserID, "booking_id", bookingID).
			WarnContext(ctx, "thread access denied")
		return nil, ErrUnauthorized
	}
	return messages, nil
}

// ListThreads summarises every thread the principal takes part in, most
// recently active first.
func (s *MessagingService) ListThreads(ctx context.Context, principal Principal) ([]ThreadSummary, error) {
	if s == nil {
		return nil, fmt.Errorf("MessagingService is nil")
	}

	messages, err := s.store.Messages().ListMessages(ctx, persistence.MessageFilter{ParticipantID: principal.UserID})
	if err != nil {
		return nil, err
	}

	byThread := make(map[string]*ThreadSummary)
	for _, m := range messages {
		summary, ok := byThread[m.ThreadID]
		if !ok {
			summary = &ThreadSummary{ThreadID: m.ThreadID}
			byThread[m.ThreadID] = summary
		}
		summary.MessageCount++
		summary.LastMessage = m
		if m.ReceiverID == principal.UserID && !m.Read {
			summary.UnreadCount++
		}
	}

	summaries := make([]ThreadSummary, 0, len(byThread))
	for _, summary := range byThread {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage.CreatedAt, summaries[j].LastMessage.CreatedAt
		if a.Equal(b) {
			return summaries[i].ThreadID < summaries[j].ThreadID
		}
		return a.After(b)
	})
	return summaries, nil
}

// MarkThreadRead flags the messages the principal received in a thread as read
// and returns how many changed.
func (s *MessagingService) MarkThreadRead(ctx context.Context, principal Principal, bookingID string) (updated int, err error) {
	if s == nil {
		err = fmt.Errorf("MessagingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MarkThreadRead",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to mark thread read", err)
			return
		}
		logger.With("updated_count", updated).InfoContext(ctx, "thread marked read")
	}()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		if _, err := tx.Bookings().GetBooking(ctx, bookingID); err != nil {
			return mapRepoError("booking", bookingID, err)
		}
		messages, err := tx.Messages().ListMessages(ctx, persistence.MessageFilter{ThreadID: bookingID})
		if err != nil {
			return err
		}
		for _, m := range messages {
			if m.ReceiverID != principal.UserID || m.Read {
				continue
			}
			m.Read = true
			if err := tx.Messages().UpdateMessage(ctx, m); err != nil {
				return mapRepoError("message", m.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		updated = 0
	}
	return
}

func mayReadThread(principal Principal, booking domain.Booking, resource domain.Resource, messages []domain.Message) bool {
	if principal.IsAdmin() || principal.UserID == booking.UserID || principal.UserID == resource.OwnerID {
		return true
	}
	for _, m := range messages {
		if m.SenderID == principal.UserID || m.ReceiverID == principal.UserID {
			return true
		}
	}
	return false
}

// lookupUser returns the stored user, or the zero User when the id is unknown.
func lookupUser(ctx context.Context, users persistence.UserRepository, id string) (domain.User, error) {
	user, err := users.GetUser(ctx, id)
	if errors.Is(err, persistence.ErrNotFound) {
		return domain.User{ID: id}, nil
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
