package sqlite

import (
	"context"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

type reviewRepository struct {
	q querier
}

func (r reviewRepository) CreateReview(ctx context.Context, review domain.Review) error {
	if review.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO reviews (id, resource_id, user_id, user_name, user_profile_image, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.ResourceID, review.UserID, review.UserName, review.UserProfileImage,
		review.Rating, review.Comment, encodeTime(review.CreatedAt),
	)
	return mapError("create review", err)
}

func (r reviewRepository) ListReviews(ctx context.Context, resourceID string) ([]domain.Review, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, resource_id, user_id, user_name, user_profile_image, rating, comment, created_at
		FROM reviews
		WHERE resource_id = ?
		ORDER BY created_at DESC, id ASC`, resourceID)
	if err != nil {
		return nil, mapError("list reviews", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var (
			review    domain.Review
			createdAt int64
		)
		err := rows.Scan(
			&review.ID, &review.ResourceID, &review.UserID, &review.UserName, &review.UserProfileImage,
			&review.Rating, &review.Comment, &createdAt,
		)
		if err != nil {
			return nil, mapError("scan review", err)
		}
		review.CreatedAt = decodeTime(createdAt)
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list reviews", err)
	}
	return reviews, nil
}
