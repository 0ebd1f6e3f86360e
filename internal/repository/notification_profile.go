package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"enatega_storefront/internal/model"
)

type notificationProfileRepository struct {
	db *sqlx.DB
}

func NewNotificationProfileRepository(db *sqlx.DB) NotificationProfileRepository {
	return &notificationProfileRepository{db: db}
}

// Get returns the notification flags of a user.
// has_device_token is derived from device_tokens rather than stored.
func (r *notificationProfileRepository) Get(ctx context.Context, userID int64) (*model.NotificationProfile, error) {
	query := `
		SELECT u.is_offer_notification,
		       u.is_order_notification,
		       EXISTS(SELECT 1 FROM device_tokens d WHERE d.user_id = u.id) AS has_device_token
		FROM users u
		WHERE u.id = $1
	`
	var profile model.NotificationProfile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification profile: %w", err)
	}
	return &profile, nil
}

// UpdateFlags sets both notification flags of a user.
func (r *notificationProfileRepository) UpdateFlags(ctx context.Context, userID int64, offer, order bool) error {
	query := `
		UPDATE users
		SET is_offer_notification = $2, is_order_notification = $3, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, offer, order)
	if err != nil {
		return fmt.Errorf("update notification flags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification flags: %w", err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// FilterSubscribed keeps the users that opted into the given category.
func (r *notificationProfileRepository) FilterSubscribed(ctx context.Context, category string, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return []int64{}, nil
	}

	var column string
	switch category {
	case model.PushCategoryOffer:
		column = "is_offer_notification"
	case model.PushCategoryOrder:
		column = "is_order_notification"
	default:
		return nil, fmt.Errorf("unknown push category %q", category)
	}

	query := fmt.Sprintf(`SELECT id FROM users WHERE id = ANY($1) AND %s = true`, column)
	subscribed := []int64{}
	if err := r.db.SelectContext(ctx, &subscribed, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("filter subscribed users: %w", err)
	}
	return subscribed, nil
}
