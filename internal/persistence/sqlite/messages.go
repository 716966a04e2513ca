package sqlite

import (
	"context"
	"strings"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

type messageRepository struct {
	q querier
}

const messageColumns = `id, thread_id, sender_id, sender_name, sender_profile_image, receiver_id,
	receiver_name, receiver_profile_image, content, read, created_at`

func (r messageRepository) CreateMessage(ctx context.Context, m domain.Message) error {
	if m.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ThreadID, m.SenderID, m.SenderName, m.SenderProfileImage, m.ReceiverID,
		m.ReceiverName, m.ReceiverProfileImage, m.Content, boolToInt(m.Read), encodeTime(m.CreatedAt),
	)
	return mapError("create message", err)
}

func (r messageRepository) UpdateMessage(ctx context.Context, m domain.Message) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE messages
		SET sender_name = ?, sender_profile_image = ?, receiver_name = ?, receiver_profile_image = ?,
			content = ?, read = ?
		WHERE id = ?`,
		m.SenderName, m.SenderProfileImage, m.ReceiverName, m.ReceiverProfileImage, m.Content, boolToInt(m.Read), m.ID,
	)
	if err != nil {
		return mapError("update message", err)
	}
	return requireAffected("update message", result)
}

func (r messageRepository) ListMessages(ctx context.Context, filter persistence.MessageFilter) ([]domain.Message, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.ThreadID != "" {
		clauses = append(clauses, "thread_id = ?")
		args = append(args, filter.ThreadID)
	}
	if filter.ParticipantID != "" {
		clauses = append(clauses, "(sender_id = ? OR receiver_id = ?)")
		args = append(args, filter.ParticipantID, filter.ParticipantID)
	}

	query := `SELECT ` + messageColumns + ` FROM messages`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list messages", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m         domain.Message
			read      int
			createdAt int64
		)
		err := rows.Scan(
			&m.ID, &m.ThreadID, &m.SenderID, &m.SenderName, &m.SenderProfileImage, &m.ReceiverID,
			&m.ReceiverName, &m.ReceiverProfileImage, &m.Content, &read, &createdAt,
		)
		if err != nil {
			return nil, mapError("scan message", err)
		}
		m.Read = read != 0
		m.CreatedAt = decodeTime(createdAt)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list messages", err)
	}
	return messages, nil
}
