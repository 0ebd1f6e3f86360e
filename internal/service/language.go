package service

import (
	"context"
	"log/slog"

	"enatega_storefront/internal/cache"
	"enatega_storefront/internal/model"
)

// LanguageService reads and writes the user's UI language.
type LanguageService struct {
	store  cache.LanguageStore
	logger *slog.Logger
}

func NewLanguageService(store cache.LanguageStore, logger *slog.Logger) *LanguageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LanguageService{store: store, logger: logger.With("component", "LanguageService")}
}

// Get returns the stored language, or the default when none is stored or the stored code is no longer supported.
func (s *LanguageService) Get(ctx context.Context, userID int64) (model.Language, error) {
	def, _ := model.LookupLanguage(model.DefaultLanguageCode)

	code, found, err := s.store.Get(ctx, userID)
	if err != nil {
		return model.Language{}, err
	}
	if !found {
		return def, nil
	}

	lang, ok := model.LookupLanguage(code)
	if !ok {
		s.logger.Warn("stored language no longer supported", "user", userID, "code", code)
		return def, nil
	}
	return lang, nil
}

// Set stores a supported language code.
func (s *LanguageService) Set(ctx context.Context, userID int64, code string) (model.Language, error) {
	lang, ok := model.LookupLanguage(code)
	if !ok {
		return model.Language{}, model.ErrUnsupportedLanguage
	}
	if err := s.store.Set(ctx, userID, lang.Code); err != nil {
		return model.Language{}, err
	}
	return lang, nil
}
