package repository

import (
	"context"

	"enatega_storefront/internal/model"
)

type ReviewRepository interface {
	// Create inserts a review; ID and CreatedAt must be set by the caller
	Create(ctx context.Context, review *model.Review) error
	// List returns up to limit reviews of a restaurant ordered by key, so the
	// limit applies after sorting. A non-empty ratings restricts the result.
	List(ctx context.Context, restaurantID int64, key model.SortKey, ratings []int, limit int) ([]model.Review, error)
	// RatingCounts returns the number of reviews per rating over all reviews of a restaurant
	RatingCounts(ctx context.Context, restaurantID int64) (map[int]int, error)
	// RestaurantExists checks whether the restaurant is known
	RestaurantExists(ctx context.Context, restaurantID int64) (bool, error)
}

type NotificationProfileRepository interface {
	// Get returns the user's notification flags and whether any device token is registered
	Get(ctx context.Context, userID int64) (*model.NotificationProfile, error)
	// UpdateFlags writes both notification flags
	UpdateFlags(ctx context.Context, userID int64, offer, order bool) error
	// FilterSubscribed returns the subset of userIDs whose flag for category is on
	FilterSubscribed(ctx context.Context, category string, userIDs []int64) ([]int64, error)
}

type DeviceTokenRepository interface {
	// Upsert creates or updates a device token for a user
	Upsert(ctx context.Context, userID int64, token, platform string) error
	// GetByUserID returns all device tokens for a user
	GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error)
	// GetByUserIDs returns the device tokens of several users
	GetByUserIDs(ctx context.Context, userIDs []int64) ([]model.DeviceToken, error)
	// Delete removes a device token
	Delete(ctx context.Context, token string) error
}
