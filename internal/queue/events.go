package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the storefront stream
const (
	EventReviewCreated      = "review_created"
	EventPreferencesUpdated = "preferences_updated"
	EventPushRequested      = "push_requested"
)

// Stream names
const (
	StreamStorefront = "stream:storefront"
)

// Consumer group name for storefront workers
const (
	ConsumerGroupStorefront = "storefront_workers"
)

// StorefrontEvent is published to the storefront stream.
// All storefront events share this structure.
type StorefrontEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// ReviewCreated
	RestaurantID int64  `json:"restaurant_id,omitempty"`
	ReviewID     string `json:"review_id,omitempty"`
	Rating       int    `json:"rating,omitempty"`

	// PreferencesUpdated
	UserID            int64 `json:"user_id,omitempty"`
	OfferNotification bool  `json:"offer_notification,omitempty"`
	OrderNotification bool  `json:"order_notification,omitempty"`

	// PushRequested
	Category string  `json:"category,omitempty"`
	UserIDs  []int64 `json:"user_ids,omitempty"`
	Title    string  `json:"title,omitempty"`
	Body     string  `json:"body,omitempty"`
}

// NewReviewCreatedEvent creates an event for a new review.
// Worker drops the cached rating summary of the restaurant.
func NewReviewCreatedEvent(restaurantID int64, reviewID string, rating int) StorefrontEvent {
	return StorefrontEvent{
		Type:         EventReviewCreated,
		Timestamp:    time.Now().Unix(),
		RestaurantID: restaurantID,
		ReviewID:     reviewID,
		Rating:       rating,
	}
}

// NewPreferencesUpdatedEvent creates an event for a notification preference change.
// Worker sends a confirmation push to the user's devices.
func NewPreferencesUpdatedEvent(userID int64, offer, order bool) StorefrontEvent {
	return StorefrontEvent{
		Type:              EventPreferencesUpdated,
		Timestamp:         time.Now().Unix(),
		UserID:            userID,
		OfferNotification: offer,
		OrderNotification: order,
	}
}

// NewPushRequestedEvent creates an event asking for an offer or order push.
// Worker sends it to the listed users that opted into the category.
func NewPushRequestedEvent(category string, userIDs []int64, title, body string) StorefrontEvent {
	return StorefrontEvent{
		Type:      EventPushRequested,
		Timestamp: time.Now().Unix(),
		Category:  category,
		UserIDs:   userIDs,
		Title:     title,
		Body:      body,
	}
}

// ToMap converts the event to a map for Redis XADD.
// The JSON payload goes in a "data" field.
func (e StorefrontEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseStorefrontEvent parses a StorefrontEvent from Redis stream message values.
func ParseStorefrontEvent(values map[string]interface{}) (StorefrontEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return StorefrontEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event StorefrontEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return StorefrontEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
