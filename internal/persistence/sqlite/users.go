package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

type userRepository struct {
	q querier
}

const userColumns = `id, email, name, role, department, profile_image, created_at`

func (r userRepository) CreateUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, string(user.Role), user.Department, user.ProfileImage, encodeTime(user.CreatedAt),
	)
	return mapError("create user", err)
}

func (r userRepository) UpdateUser(ctx context.Context, user domain.User) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET email = ?, name = ?, role = ?, department = ?, profile_image = ?
		WHERE id = ?`,
		user.Email, user.Name, string(user.Role), user.Department, user.ProfileImage, user.ID,
	)
	if err != nil {
		return mapError("update user", err)
	}
	return requireAffected("update user", result)
}

func (r userRepository) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, persistence.ErrNotFound
	}
	if err != nil {
		return domain.User{}, mapError("get user", err)
	}
	return user, nil
}

func (r userRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list users", err)
	}
	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (domain.User, error) {
	var (
		user      domain.User
		role      string
		createdAt int64
	)
	if err := s.Scan(&user.ID, &user.Email, &user.Name, &role, &user.Department, &user.ProfileImage, &createdAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	user.CreatedAt = decodeTime(createdAt)
	return user, nil
}
