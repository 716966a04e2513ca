package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

type resourceRepository struct {
	q querier
}

const resourceColumns = `id, title, description, category, location, capacity, status, owner_id, owner_name,
	equipment, availability_rules, requires_approval, rating, review_count, booking_count, created_at, updated_at`

func (r resourceRepository) CreateResource(ctx context.Context, resource domain.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}
	equipment, err := encodeEquipment(resource.Equipment)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO resources (`+resourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resource.ID, resource.Title, resource.Description, string(resource.Category), resource.Location,
		resource.Capacity, string(resource.Status), resource.OwnerID, resource.OwnerName, equipment,
		resource.AvailabilityRules, boolToInt(resource.RequiresApproval), resource.Rating,
		resource.ReviewCount, resource.BookingCount, encodeTime(resource.CreatedAt), encodeTime(resource.UpdatedAt),
	)
	return mapError("create resource", err)
}

func (r resourceRepository) UpdateResource(ctx context.Context, resource domain.Resource) error {
	equipment, err := encodeEquipment(resource.Equipment)
	if err != nil {
		return err
	}
	result, err := r.q.ExecContext(ctx, `
		UPDATE resources
		SET title = ?, description = ?, category = ?, location = ?, capacity = ?, status = ?,
			owner_id = ?, owner_name = ?, equipment = ?, availability_rules = ?, requires_approval = ?,
			rating = ?, review_count = ?, booking_count = ?, updated_at = ?
		WHERE id = ?`,
		resource.Title, resource.Description, string(resource.Category), resource.Location, resource.Capacity,
		string(resource.Status), resource.OwnerID, resource.OwnerName, equipment, resource.AvailabilityRules,
		boolToInt(resource.RequiresApproval), resource.Rating, resource.ReviewCount, resource.BookingCount,
		encodeTime(resource.UpdatedAt), resource.ID,
	)
	if err != nil {
		return mapError("update resource", err)
	}
	return requireAffected("update resource", result)
}

func (r resourceRepository) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	resource, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Resource{}, persistence.ErrNotFound
	}
	if err != nil {
		return domain.Resource{}, mapError("get resource", err)
	}
	return resource, nil
}

func (r resourceRepository) ListResources(ctx context.Context, filter persistence.ResourceFilter) ([]domain.Resource, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.OwnerID != "" {
		clauses = append(clauses, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}

	query := `SELECT ` + resourceColumns + ` FROM resources`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list resources", err)
	}
	defer rows.Close()

	resources := make([]domain.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, mapError("scan resource", err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list resources", err)
	}
	return resources, nil
}

func scanResource(s scanner) (domain.Resource, error) {
	var (
		resource             domain.Resource
		category, status     string
		equipment            string
		requiresApproval     int
		createdAt, updatedAt int64
	)
	err := s.Scan(
		&resource.ID, &resource.Title, &resource.Description, &category, &resource.Location,
		&resource.Capacity, &status, &resource.OwnerID, &resource.OwnerName, &equipment,
		&resource.AvailabilityRules, &requiresApproval, &resource.Rating, &resource.ReviewCount,
		&resource.BookingCount, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Resource{}, err
	}
	resource.Category = domain.Category(category)
	resource.Status = domain.ResourceStatus(status)
	resource.RequiresApproval = requiresApproval != 0
	resource.CreatedAt = decodeTime(createdAt)
	resource.UpdatedAt = decodeTime(updatedAt)
	if err := json.Unmarshal([]byte(equipment), &resource.Equipment); err != nil {
		return domain.Resource{}, fmt.Errorf("decode equipment: %w", err)
	}
	return resource, nil
}

func encodeEquipment(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode equipment: %w", err)
	}
	return string(data), nil
}
