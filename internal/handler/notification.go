package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"enatega_storefront/internal/httputil"
	"enatega_storefront/internal/model"
	"enatega_storefront/internal/transport/http/middleware"
)

// NotificationService is the part of service.NotificationService the handler uses.
type NotificationService interface {
	GetProfile(ctx context.Context, userID int64) (*model.NotificationProfile, error)
	UpdatePreferences(ctx context.Context, userID int64, req *model.UpdateNotificationRequest) (*model.NotificationProfile, error)
	RegisterDeviceToken(ctx context.Context, userID int64, token, platform string) error
	RemoveDeviceToken(ctx context.Context, token string) error
}

type NotificationHandler struct {
	notifService NotificationService
	logger       *slog.Logger
}

func NewNotificationHandler(notifService NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notifService: notifService,
		logger:       logger.With("component", "NotificationHandler"),
	}
}

// GetPreferences handles GET /me/notifications
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.notifService.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "get notification profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdatePreferences handles PATCH /me/notifications
// Both offer_notification and order_notification must be present.
// Error messages are shown to the user verbatim by the app.
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.notifService.UpdatePreferences(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.logger, "update notification preferences", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// RegisterToken handles POST /devices/token
// Called by the app after it obtains a push token on resume.
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.notifService.RegisterDeviceToken(r.Context(), userID, req.Token, req.Platform); err != nil {
		writeServiceError(w, h.logger, "register device token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Device token registered"})
}

// RemoveToken handles DELETE /devices/token
func (h *NotificationHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.notifService.RemoveDeviceToken(r.Context(), req.Token); err != nil {
		writeServiceError(w, h.logger, "remove device token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Device token removed"})
}
