package service

import (
	"context"
	"log/slog"
	"strconv"

	"enatega_storefront/internal/model"
	"enatega_storefront/internal/queue"
	"enatega_storefront/internal/repository"
)

// NotificationService handles notification preferences, device tokens and push dispatch.
type NotificationService struct {
	profileRepo repository.NotificationProfileRepository
	tokenRepo   repository.DeviceTokenRepository
	publisher   queue.Publisher // Can be nil if the stream is not wired
	push        PushSender      // Can be nil if push is not configured
	logger      *slog.Logger
}

func NewNotificationService(
	profileRepo repository.NotificationProfileRepository,
	tokenRepo repository.DeviceTokenRepository,
	publisher queue.Publisher,
	push PushSender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
		publisher:   publisher,
		push:        push,
		logger:      logger.With("component", "NotificationService"),
	}
}

// GetProfile returns the user's notification profile.
func (s *NotificationService) GetProfile(ctx context.Context, userID int64) (*model.NotificationProfile, error) {
	return s.profileRepo.Get(ctx, userID)
}

// UpdatePreferences writes both notification flags and returns the resulting profile.
// Both flags are required: the settings screen always sends the pair.
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID int64, req *model.UpdateNotificationRequest) (*model.NotificationProfile, error) {
	if req.OfferNotification == nil || req.OrderNotification == nil {
		return nil, model.ErrPartialPreferenceUpdate
	}
	offer, order := *req.OfferNotification, *req.OrderNotification

	if err := s.profileRepo.UpdateFlags(ctx, userID, offer, order); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, queue.StreamStorefront, queue.NewPreferencesUpdatedEvent(userID, offer, order)); err != nil {
			// The update is committed; only the confirmation push is lost.
			s.logger.Warn("publish preferences_updated failed", "user", userID, "err", err)
		}
	}

	return s.profileRepo.Get(ctx, userID)
}

// RegisterDeviceToken stores or updates a device's push token.
// The token is unique, so a token seen for another user is reassigned.
func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID int64, token, platform string) error {
	if token == "" {
		return &model.ValidationError{Field: "token", Reason: "is required"}
	}
	switch platform {
	case "":
		platform = model.PlatformExpo
	case model.PlatformExpo, model.PlatformIOS, model.PlatformAndroid:
	default:
		return &model.ValidationError{Field: "platform", Reason: "must be expo, ios or android"}
	}

	return s.tokenRepo.Upsert(ctx, userID, token, platform)
}

// RemoveDeviceToken removes a device token (e.g., on logout).
func (s *NotificationService) RemoveDeviceToken(ctx context.Context, token string) error {
	if token == "" {
		return &model.ValidationError{Field: "token", Reason: "is required"}
	}
	return s.tokenRepo.Delete(ctx, token)
}

// NotifyUsers sends a push of the given category to the users that opted into it.
// Returns the number of users the push was addressed to.
func (s *NotificationService) NotifyUsers(ctx context.Context, category string, userIDs []int64, title, body string) (int, error) {
	if s.push == nil {
		s.logger.Debug("push not configured, skipping", "category", category)
		return 0, nil
	}

	subscribed, err := s.profileRepo.FilterSubscribed(ctx, category, userIDs)
	if err != nil {
		return 0, err
	}
	if len(subscribed) == 0 {
		return 0, nil
	}

	tokens, err := s.tokenRepo.GetByUserIDs(ctx, subscribed)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	data := map[string]string{"type": category}
	if err := s.push.SendToTokens(ctx, tokenStrings(tokens), title, body, data); err != nil {
		return 0, err
	}

	s.logger.Info("notified users", "category", category, "requested", len(userIDs), "subscribed", len(subscribed))
	return len(subscribed), nil
}

// SendPreferenceConfirmation pushes "Notification Status Updated" to the user's devices.
// Nothing is sent when both flags are off.
func (s *NotificationService) SendPreferenceConfirmation(ctx context.Context, userID int64, offer, order bool) error {
	if s.push == nil || (!offer && !order) {
		return nil
	}

	tokens, err := s.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	data := map[string]string{
		"type":     "preferences_updated",
		"offer_on": strconv.FormatBool(offer),
		"order_on": strconv.FormatBool(order),
	}
	return s.push.SendToTokens(ctx, tokenStrings(tokens), model.MessageStatusUpdated, preferenceBody(offer, order), data)
}

func preferenceBody(offer, order bool) string {
	switch {
	case offer && order:
		return "You will receive offer and order notifications"
	case offer:
		return "You will receive offer notifications"
	default:
		return "You will receive order notifications"
	}
}

func tokenStrings(tokens []model.DeviceToken) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Token
	}
	return out
}
