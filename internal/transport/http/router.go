package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"enatega_storefront/internal/handler"
	"enatega_storefront/internal/httputil"
	authmw "enatega_storefront/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	ReviewHandler       *handler.ReviewHandler
	NotificationHandler *handler.NotificationHandler
	LanguageHandler     *handler.LanguageHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public review endpoints
	r.Route("/restaurants/{id}/reviews", func(r chi.Router) {
		r.Get("/", cfg.ReviewHandler.List)
		r.Get("/summary", cfg.ReviewHandler.Summary)
		r.With(authmw.AuthMiddleware(cfg.JWTSecret)).Post("/", cfg.ReviewHandler.Create)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me/notifications", cfg.NotificationHandler.GetPreferences)
		r.Patch("/me/notifications", cfg.NotificationHandler.UpdatePreferences)

		r.Post("/devices/token", cfg.NotificationHandler.RegisterToken)
		r.Delete("/devices/token", cfg.NotificationHandler.RemoveToken)

		r.Get("/me/language", cfg.LanguageHandler.Get)
		r.Put("/me/language", cfg.LanguageHandler.Set)
	})

	return r
}
