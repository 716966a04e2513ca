package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

// NotificationService exposes a principal's notifications and their read flags.
type NotificationService struct {
	store  persistence.Store
	logger *slog.Logger
}

// NewNotificationService constructs a notification service.
func NewNotificationService(store persistence.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: store, logger: defaultLogger(logger)}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// List returns the principal's notifications, most recent first.
func (s *NotificationService) List(ctx context.Context, principal Principal, query NotificationQuery) ([]domain.Notification, error) {
	if s == nil {
		return nil, fmt.Errorf("NotificationService is nil")
	}

	notifications, err := s.store.Notifications().ListNotifications(ctx, persistence.NotificationFilter{
		UserID:     principal.UserID,
		UnreadOnly: query.UnreadOnly,
		Limit:      query.Limit,
	})
	if err != nil {
		logFailure(ctx, s.loggerWith(ctx, "List", "principal_id", principal.UserID), "failed to list notifications", err)
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns how many of the principal's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, principal Principal) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("NotificationService is nil")
	}

	unread, err := s.store.Notifications().ListNotifications(ctx, persistence.NotificationFilter{
		UserID:     principal.UserID,
		UnreadOnly: true,
	})
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead flags one notification as read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) (notification domain.Notification, err error) {
	if s == nil {
		err = fmt.Errorf("NotificationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MarkRead",
		"principal_id", principal.UserID,
		"notification_id", notificationID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to mark notification read", err)
			return
		}
		logger.InfoContext(ctx, "notification marked read")
	}()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		existing, err := tx.Notifications().GetNotification(ctx, notificationID)
		if err != nil {
			return mapRepoError("notification", notificationID, err)
		}
		if existing.UserID != principal.UserID {
			return ErrUnauthorized
		}
		notification = existing
		if existing.Read {
			return nil
		}
		notification.Read = true
		return mapRepoError("notification", notificationID, tx.Notifications().UpdateNotification(ctx, notification))
	})
	if err != nil {
		notification = domain.Notification{}
	}
	return
}

// MarkAllRead flags every unread notification of the principal and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, principal Principal) (updated int, err error) {
	if s == nil {
		err = fmt.Errorf("NotificationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MarkAllRead", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to mark notifications read", err)
			return
		}
		logger.With("updated_count", updated).InfoContext(ctx, "notifications marked read")
	}()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		unread, err := tx.Notifications().ListNotifications(ctx, persistence.NotificationFilter{
			UserID:     principal.UserID,
			UnreadOnly: true,
		})
		if err != nil {
			return err
		}
		for _, n := range unread {
			n.Read = true
			if err := tx.Notifications().UpdateNotification(ctx, n); err != nil {
				return mapRepoError("notification", n.ID, err)
			}
		}
		updated = len(unread)
		return nil
	})
	if err != nil {
		updated = 0
	}
	return
}
