package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"enatega_storefront/internal/httputil"
	"enatega_storefront/internal/model"
)

// ReviewService is the part of service.ReviewService the handler uses.
type ReviewService interface {
	List(ctx context.Context, restaurantID int64, sort string, ratings []int) (*model.ReviewListResponse, error)
	Summary(ctx context.Context, restaurantID int64) (*model.ReviewSummary, error)
	Create(ctx context.Context, restaurantID int64, req *model.CreateReviewRequest) (*model.Review, error)
}

type ReviewHandler struct {
	reviews ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(reviews ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{reviews: reviews, logger: logger.With("component", "ReviewHandler")}
}

// List handles GET /restaurants/{id}/reviews?sort=newest&rating=5,4
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid restaurant id")
		return
	}

	ratings, err := parseRatings(r.URL.Query().Get("rating"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid rating parameter")
		return
	}

	resp, err := h.reviews.List(r.Context(), id, r.URL.Query().Get("sort"), ratings)
	if err != nil {
		writeServiceError(w, h.logger, "list reviews", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Summary handles GET /restaurants/{id}/reviews/summary
func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid restaurant id")
		return
	}

	summary, err := h.reviews.Summary(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "review summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// Create handles POST /restaurants/{id}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := restaurantID(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid restaurant id")
		return
	}

	var req model.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	rv, err := h.reviews.Create(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.logger, "create review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rv)
}

// parseRatings parses a comma-separated rating filter; empty means no filter.
func parseRatings(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ratings := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, v)
	}
	return ratings, nil
}
