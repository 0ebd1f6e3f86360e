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

type LanguageService interface {
	Get(ctx context.Context, userID int64) (model.Language, error)
	Set(ctx context.Context, userID int64, code string) (model.Language, error)
}

type LanguageHandler struct {
	languages LanguageService
	logger    *slog.Logger
}

func NewLanguageHandler(languages LanguageService, logger *slog.Logger) *LanguageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LanguageHandler{languages: languages, logger: logger.With("component", "LanguageHandler")}
}

type languageResponse struct {
	Selected  model.Language   `json:"selected"`
	Available []model.Language `json:"available"`
}

// Get handles GET /me/language
func (h *LanguageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	lang, err := h.languages.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "get language", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, languageResponse{Selected: lang, Available: model.SupportedLanguages})
}

// Set handles PUT /me/language
func (h *LanguageHandler) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	lang, err := h.languages.Set(r.Context(), userID, req.Code)
	if err != nil {
		writeServiceError(w, h.logger, "set language", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, languageResponse{Selected: lang, Available: model.SupportedLanguages})
}
