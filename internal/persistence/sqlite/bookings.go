package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

type bookingRepository struct {
	q querier
}

const bookingColumns = `id, resource_id, resource_title, user_id, user_name, start_time, end_time,
	status, notes, recurrence, created_at, updated_at`

func (r bookingRepository) CreateBooking(ctx context.Context, booking domain.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID, booking.ResourceID, booking.ResourceTitle, booking.UserID, booking.UserName,
		encodeTime(booking.Start), encodeTime(booking.End), string(booking.Status), booking.Notes,
		string(booking.Recurrence.Normalize()), encodeTime(booking.CreatedAt), encodeTime(booking.UpdatedAt),
	)
	return mapError("create booking", err)
}

func (r bookingRepository) UpdateBooking(ctx context.Context, booking domain.Booking) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE bookings
		SET resource_id = ?, resource_title = ?, user_id = ?, user_name = ?, start_time = ?, end_time = ?,
			status = ?, notes = ?, recurrence = ?, updated_at = ?
		WHERE id = ?`,
		booking.ResourceID, booking.ResourceTitle, booking.UserID, booking.UserName,
		encodeTime(booking.Start), encodeTime(booking.End), string(booking.Status), booking.Notes,
		string(booking.Recurrence.Normalize()), encodeTime(booking.UpdatedAt), booking.ID,
	)
	if err != nil {
		return mapError("update booking", err)
	}
	return requireAffected("update booking", result)
}

func (r bookingRepository) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, persistence.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, mapError("get booking", err)
	}
	return booking, nil
}

func (r bookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]domain.Booking, error) {
	if filter.ResourceIDs != nil && len(filter.ResourceIDs) == 0 {
		return []domain.Booking{}, nil
	}

	var (
		clauses []string
		args    []any
	)
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.ResourceIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("resource_id IN (%s)", placeholders(len(filter.ResourceIDs))))
		for _, id := range filter.ResourceIDs {
			args = append(args, id)
		}
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", placeholders(len(filter.Statuses))))
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, mapError("scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list bookings", err)
	}
	return bookings, nil
}

func scanBooking(s scanner) (domain.Booking, error) {
	var (
		booking                          domain.Booking
		start, end, createdAt, updatedAt int64
		status, recurrence               string
	)
	err := s.Scan(
		&booking.ID, &booking.ResourceID, &booking.ResourceTitle, &booking.UserID, &booking.UserName,
		&start, &end, &status, &booking.Notes, &recurrence, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	booking.Start = decodeTime(start)
	booking.End = decodeTime(end)
	booking.Status = domain.BookingStatus(status)
	booking.Recurrence = domain.Recurrence(recurrence)
	booking.CreatedAt = decodeTime(createdAt)
	booking.UpdatedAt = decodeTime(updatedAt)
	return booking, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
