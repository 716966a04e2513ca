package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/campushub/resource-hub/internal/persistence"
)

// mapError translates driver errors into persistence sentinels. The driver
// reports constraint failures only through the message text.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("sqlite: %s: %w", op, persistence.ErrDuplicate)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("sqlite: %s: %w: %v", op, persistence.ErrConstraintViolation, err)
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}

// requireAffected reports ErrNotFound when an update touched no rows.
func requireAffected(op string, result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: %s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
