package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"enatega_storefront/internal/cache"
	"enatega_storefront/internal/model"
	"enatega_storefront/internal/queue"
	"enatega_storefront/internal/repository"
	"enatega_storefront/internal/review"
)

const (
	// DefaultReviewListLimit caps a review list response
	DefaultReviewListLimit = 200

	// AnonymousAuthor is shown for reviews submitted without a name
	AnonymousAuthor = "Anonymous"
)

// ReviewService serves restaurant reviews and their rating histogram.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	summaries  cache.ReviewSummaryCache
	publisher  queue.Publisher // Can be nil if the stream is not wired
	logger     *slog.Logger
	now        func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	summaries cache.ReviewSummaryCache,
	publisher queue.Publisher,
	logger *slog.Logger,
) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		reviewRepo: reviewRepo,
		summaries:  summaries,
		publisher:  publisher,
		logger:     logger.With("component", "ReviewService"),
		now:        time.Now,
	}
}

// List returns a restaurant's reviews in the requested order with age labels.
// An empty sort means newest. When ratings is non-empty only those ratings are returned.
func (s *ReviewService) List(ctx context.Context, restaurantID int64, sort string, ratings []int) (*model.ReviewListResponse, error) {
	key := model.SortNewest
	if sort != "" {
		parsed, err := review.ParseSortKey(sort)
		if err != nil {
			return nil, err
		}
		key = parsed
	}
	for _, r := range ratings {
		if err := review.ValidateRating(r); err != nil {
			return nil, err
		}
	}

	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	// The store orders before applying the limit; sorting again pins the
	// tie order to the engine's.
	reviews, err := s.reviewRepo.List(ctx, restaurantID, key, ratings, DefaultReviewListLimit)
	if err != nil {
		return nil, err
	}

	sorted := review.SortReviews(reviews, key)
	return &model.ReviewListResponse{
		Sort:    key,
		Reviews: review.Label(sorted, s.now()),
	}, nil
}

// Summary returns the rating histogram of a restaurant.
// Cache-aside: a cache failure degrades to computing from the database.
func (s *ReviewService) Summary(ctx context.Context, restaurantID int64) (*model.ReviewSummary, error) {
	cached, found, err := s.summaries.Get(ctx, restaurantID)
	if err != nil {
		s.logger.Warn("summary cache read failed", "restaurant", restaurantID, "err", err)
	} else if found {
		return cached, nil
	}

	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	counts, err := s.reviewRepo.RatingCounts(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	summary, err := review.SummarizeCounts(restaurantID, counts)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}

	if err := s.summaries.Set(ctx, &summary); err != nil {
		s.logger.Warn("summary cache write failed", "restaurant", restaurantID, "err", err)
	}
	return &summary, nil
}

// Create stores a new review and announces it on the storefront stream.
func (s *ReviewService) Create(ctx context.Context, restaurantID int64, req *model.CreateReviewRequest) (*model.Review, error) {
	if err := review.ValidateRating(req.Rating); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(description) > model.MaxReviewDescriptionLength {
		return nil, &model.ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("must be at most %d characters", model.MaxReviewDescriptionLength),
		}
	}
	author := strings.TrimSpace(req.AuthorName)
	if author == "" {
		author = AnonymousAuthor
	}

	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	rv := &model.Review{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Rating:       req.Rating,
		Description:  description,
		AuthorName:   author,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.announce(ctx, rv)
	return rv, nil
}

// announce publishes review_created. Without the stream the summary is dropped inline.
func (s *ReviewService) announce(ctx context.Context, rv *model.Review) {
	if s.publisher != nil {
		_, err := s.publisher.Publish(ctx, queue.StreamStorefront,
			queue.NewReviewCreatedEvent(rv.RestaurantID, rv.ID, rv.Rating))
		if err == nil {
			return
		}
		s.logger.Warn("publish review_created failed, invalidating inline", "review", rv.ID, "err", err)
	}

	if err := s.summaries.Invalidate(ctx, rv.RestaurantID); err != nil {
		s.logger.Error("invalidate summary failed", "restaurant", rv.RestaurantID, "err", err)
	}
}

func (s *ReviewService) ensureRestaurant(ctx context.Context, restaurantID int64) error {
	exists, err := s.reviewRepo.RestaurantExists(ctx, restaurantID)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrRestaurantNotFound
	}
	return nil
}
