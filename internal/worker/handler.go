package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"enatega_storefront/internal/queue"
)

// SummaryInvalidator drops a restaurant's cached rating summary.
// Satisfied by cache.ReviewSummaryCache.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, restaurantID int64) error
}

// PreferenceConfirmer sends the "preferences updated" push to a user.
// This allows the worker to notify users without depending on the service directly.
type PreferenceConfirmer interface {
	SendPreferenceConfirmation(ctx context.Context, userID int64, offer, order bool) error
}

// PushDispatcher sends an offer or order push to the users that opted into it.
type PushDispatcher interface {
	NotifyUsers(ctx context.Context, category string, userIDs []int64, title, body string) (int, error)
}

// Handler processes storefront events from the queue.
type Handler struct {
	summaries  SummaryInvalidator
	confirmer  PreferenceConfirmer // Can be nil if push is disabled
	dispatcher PushDispatcher      // Can be nil if push is disabled
	logger     *slog.Logger
}

// NewHandler creates a new event handler.
func NewHandler(summaries SummaryInvalidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		summaries: summaries,
		logger:    logger.With("component", "Worker"),
	}
}

// SetPreferenceConfirmer sets the confirmer used for preferences_updated events.
func (h *Handler) SetPreferenceConfirmer(c PreferenceConfirmer) {
	h.confirmer = c
}

// SetPushDispatcher sets the dispatcher used for push_requested events.
func (h *Handler) SetPushDispatcher(d PushDispatcher) {
	h.dispatcher = d
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.StorefrontEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventReviewCreated:
		err = h.handleReviewCreated(ctx, event)
	case queue.EventPreferencesUpdated:
		err = h.handlePreferencesUpdated(ctx, event)
	case queue.EventPushRequested:
		err = h.handlePushRequested(ctx, event)
	default:
		h.logger.Warn("unknown event type", "type", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		h.logger.Error("handle event failed", "type", event.Type, "duration", time.Since(startTime), "err", err)
		return err
	}

	h.logger.Info("handle event ok", "type", event.Type, "duration", time.Since(startTime))
	return nil
}

// handleReviewCreated invalidates the summary so the next read recomputes the histogram.
func (h *Handler) handleReviewCreated(ctx context.Context, event queue.StorefrontEvent) error {
	h.logger.Debug("review created", "restaurant", event.RestaurantID, "review", event.ReviewID, "rating", event.Rating)

	if err := h.summaries.Invalidate(ctx, event.RestaurantID); err != nil {
		return fmt.Errorf("invalidate summary: %w", err)
	}
	return nil
}

// handlePreferencesUpdated pushes a confirmation to the user's registered devices.
func (h *Handler) handlePreferencesUpdated(ctx context.Context, event queue.StorefrontEvent) error {
	if h.confirmer == nil {
		h.logger.Debug("preference confirmer not set, skipping", "user", event.UserID)
		return nil
	}

	err := h.confirmer.SendPreferenceConfirmation(ctx, event.UserID, event.OfferNotification, event.OrderNotification)
	if err != nil {
		return fmt.Errorf("send preference confirmation: %w", err)
	}
	return nil
}

// handlePushRequested fans an offer or order push out to the opted-in users.
func (h *Handler) handlePushRequested(ctx context.Context, event queue.StorefrontEvent) error {
	if h.dispatcher == nil {
		h.logger.Debug("push dispatcher not set, skipping", "category", event.Category)
		return nil
	}

	sent, err := h.dispatcher.NotifyUsers(ctx, event.Category, event.UserIDs, event.Title, event.Body)
	if err != nil {
		return fmt.Errorf("dispatch push: %w", err)
	}
	h.logger.Debug("push dispatched", "category", event.Category, "users", sent)
	return nil
}
