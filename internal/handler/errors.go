package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"enatega_storefront/internal/httputil"
	"enatega_storefront/internal/model"
)

// writeServiceError maps domain errors to HTTP responses; anything unknown is logged and becomes a 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeValidation, vErr.Error())
	case errors.Is(err, model.ErrInvalidSortKey):
		httputil.WriteBadRequest(w, "sort must be newest, highest or lowest")
	case errors.Is(err, model.ErrUnsupportedLanguage):
		httputil.WriteBadRequest(w, "Unsupported language")
	case errors.Is(err, model.ErrPartialPreferenceUpdate):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodePartialUpdate, err.Error())
	case errors.Is(err, model.ErrRestaurantNotFound):
		httputil.WriteNotFound(w, "Restaurant not found")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	default:
		logger.Error(op+" failed", "err", err)
		httputil.WriteInternalError(w, "Something went wrong")
	}
}

// restaurantID parses the {id} URL parameter.
func restaurantID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
