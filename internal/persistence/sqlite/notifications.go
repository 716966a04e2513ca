package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

type notificationRepository struct {
	q querier
}

const notificationColumns = `id, user_id, type, title, message, read, link, created_at`

func (r notificationRepository) CreateNotification(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, boolToInt(n.Read), n.Link, encodeTime(n.CreatedAt),
	)
	return mapError("create notification", err)
}

func (r notificationRepository) UpdateNotification(ctx context.Context, n domain.Notification) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE notifications
		SET user_id = ?, type = ?, title = ?, message = ?, read = ?, link = ?
		WHERE id = ?`,
		n.UserID, string(n.Type), n.Title, n.Message, boolToInt(n.Read), n.Link, n.ID,
	)
	if err != nil {
		return mapError("update notification", err)
	}
	return requireAffected("update notification", result)
}

func (r notificationRepository) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, persistence.ErrNotFound
	}
	if err != nil {
		return domain.Notification{}, mapError("get notification", err)
	}
	return n, nil
}

func (r notificationRepository) ListNotifications(ctx context.Context, filter persistence.NotificationFilter) ([]domain.Notification, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.UnreadOnly {
		clauses = append(clauses, "read = 0")
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list notifications", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, mapError("scan notification", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list notifications", err)
	}
	return notifications, nil
}

func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n         domain.Notification
		typ       string
		read      int
		createdAt int64
	)
	if err := s.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &read, &n.Link, &createdAt); err != nil {
		return domain.Notification{}, err
	}
	n.Type = domain.NotificationType(typ)
	n.Read = read != 0
	n.CreatedAt = decodeTime(createdAt)
	return n, nil
}
