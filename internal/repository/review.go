package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"enatega_storefront/internal/model"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a new review.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, restaurant_id, rating, description, author_name, created_at)
		VALUES (:id, :restaurant_id, :rating, :description, :author_name, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, review)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// reviewOrderBy maps a sort key to its ORDER BY clause. created_at DESC
// breaks rating ties and id keeps the order deterministic.
func reviewOrderBy(key model.SortKey) (string, error) {
	switch key {
	case model.SortNewest, "":
		return "created_at DESC, id", nil
	case model.SortHighest:
		return "rating DESC, created_at DESC, id", nil
	case model.SortLowest:
		return "rating ASC, created_at DESC, id", nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrInvalidSortKey, key)
	}
}

// List returns up to limit reviews of a restaurant in key order.
func (r *reviewRepository) List(ctx context.Context, restaurantID int64, key model.SortKey, ratings []int, limit int) ([]model.Review, error) {
	orderBy, err := reviewOrderBy(key)
	if err != nil {
		return nil, err
	}

	args := []interface{}{restaurantID, limit}
	filter := ""
	if len(ratings) > 0 {
		values := make([]int64, len(ratings))
		for i, rating := range ratings {
			values[i] = int64(rating)
		}
		filter = "AND rating = ANY($3)"
		args = append(args, pq.Array(values))
	}

	query := fmt.Sprintf(`
		SELECT id, restaurant_id, rating, description, author_name, created_at
		FROM reviews
		WHERE restaurant_id = $1 %s
		ORDER BY %s
		LIMIT $2
	`, filter, orderBy)

	reviews := []model.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

type ratingCount struct {
	Rating int `db:"rating"`
	Count  int `db:"count"`
}

// RatingCounts returns the number of reviews per rating of a restaurant.
func (r *reviewRepository) RatingCounts(ctx context.Context, restaurantID int64) (map[int]int, error) {
	query := `
		SELECT rating, COUNT(*) AS count
		FROM reviews
		WHERE restaurant_id = $1
		GROUP BY rating
	`
	var rows []ratingCount
	if err := r.db.SelectContext(ctx, &rows, query, restaurantID); err != nil {
		return nil, fmt.Errorf("count reviews by rating: %w", err)
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}

// RestaurantExists checks whether a restaurant row exists.
func (r *reviewRepository) RestaurantExists(ctx context.Context, restaurantID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = $1)`, restaurantID)
	if err != nil {
		return false, fmt.Errorf("check restaurant: %w", err)
	}
	return exists, nil
}
