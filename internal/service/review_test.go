package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enatega_storefront/internal/model"
	"enatega_storefront/internal/queue"
	"enatega_storefront/internal/review"
)

var reviewNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func sampleReviews() []model.Review {
	return []model.Review{
		{ID: "a", RestaurantID: 1, Rating: 5, CreatedAt: reviewNow.Add(-48 * time.Hour)},
		{ID: "b", RestaurantID: 1, Rating: 5, CreatedAt: reviewNow.Add(-2 * time.Hour)},
		{ID: "c", RestaurantID: 1, Rating: 3, CreatedAt: reviewNow.Add(-96 * time.Hour)},
	}
}

// storeList behaves like the reviews table: filter, order, then limit.
func storeList(all []model.Review) func(context.Context, int64, model.SortKey, []int, int) ([]model.Review, error) {
	return func(ctx context.Context, restaurantID int64, key model.SortKey, ratings []int, limit int) ([]model.Review, error) {
		var matched []model.Review
		for _, r := range all {
			if len(ratings) == 0 || slices.Contains(ratings, r.Rating) {
				matched = append(matched, r)
			}
		}
		sorted := review.SortReviews(matched, key)
		if len(sorted) > limit {
			sorted = sorted[:limit]
		}
		return sorted, nil
	}
}

func newTestReviewService(repo *mockReviewRepository, summaries *mockSummaryCache, pub *mockPublisher) *ReviewService {
	var p queue.Publisher
	if pub != nil {
		p = pub
	}
	svc := NewReviewService(repo, summaries, p, nil)
	svc.now = fixedClock(reviewNow)
	return svc
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestReviewService_List_SortsAndLabels(t *testing.T) {
	repo := &mockReviewRepository{listFn: storeList(sampleReviews())}
	svc := newTestReviewService(repo, newMockSummaryCache(), nil)

	tests := []struct {
		sort     string
		wantSort model.SortKey
		wantIDs  []string
	}{
		{"", model.SortNewest, []string{"b", "a", "c"}},
		{"newest", model.SortNewest, []string{"b", "a", "c"}},
		{"highest", model.SortHighest, []string{"b", "a", "c"}},
		{"lowest", model.SortLowest, []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.sort, func(t *testing.T) {
			resp, err := svc.List(context.Background(), 1, tt.sort, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, resp.Sort)

			ids := make([]string, len(resp.Reviews))
			for i, r := range resp.Reviews {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	resp, err := svc.List(context.Background(), 1, "newest", nil)
	require.NoError(t, err)
	assert.Equal(t, "today", resp.Reviews[0].Age)
	assert.Equal(t, "2 days ago", resp.Reviews[1].Age)
	assert.Equal(t, "4 days ago", resp.Reviews[2].Age)
}

func TestReviewService_List_RatingFilter(t *testing.T) {
	var gotRatings []int
	var gotKey model.SortKey
	list := storeList(sampleReviews())
	repo := &mockReviewRepository{
		listFn: func(ctx context.Context, restaurantID int64, key model.SortKey, ratings []int, limit int) ([]model.Review, error) {
			gotRatings, gotKey = ratings, key
			return list(ctx, restaurantID, key, ratings, limit)
		},
	}
	svc := newTestReviewService(repo, newMockSummaryCache(), nil)

	resp, err := svc.List(context.Background(), 1, "highest", []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, gotRatings)
	assert.Equal(t, model.SortHighest, gotKey)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, "c", resp.Reviews[0].ID)
}

func TestReviewService_List_OrdersBeforeLimit(t *testing.T) {
	total := DefaultReviewListLimit + 50
	all := make([]model.Review, total)
	for i := range all {
		all[i] = model.Review{
			ID:           fmt.Sprintf("r%d", i),
			RestaurantID: 1,
			Rating:       4,
			CreatedAt:    reviewNow.Add(-time.Duration(i) * time.Hour),
		}
	}
	// Only the oldest reviews fall outside the newest window.
	all[total-1].Rating = 1
	all[total-2].Rating = 5

	repo := &mockReviewRepository{listFn: storeList(all)}
	svc := newTestReviewService(repo, newMockSummaryCache(), nil)

	tests := []struct {
		sort       string
		wantFirst  string
		wantRating int
	}{
		{"lowest", fmt.Sprintf("r%d", total-1), 1},
		{"highest", fmt.Sprintf("r%d", total-2), 5},
		{"newest", "r0", 4},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			resp, err := svc.List(context.Background(), 1, tt.sort, nil)
			require.NoError(t, err)
			require.Len(t, resp.Reviews, DefaultReviewListLimit)
			assert.Equal(t, tt.wantFirst, resp.Reviews[0].ID)
			assert.Equal(t, tt.wantRating, resp.Reviews[0].Rating)
		})
	}
}

func TestReviewService_List_Errors(t *testing.T) {
	svc := newTestReviewService(&mockReviewRepository{}, newMockSummaryCache(), nil)

	_, err := svc.List(context.Background(), 1, "oldest", nil)
	assert.ErrorIs(t, err, model.ErrInvalidSortKey)

	var vErr *model.ValidationError
	_, err = svc.List(context.Background(), 1, "", []int{6})
	assert.ErrorAs(t, err, &vErr)

	missing := newTestReviewService(&mockReviewRepository{
		restaurantExistsFn: func(ctx context.Context, restaurantID int64) (bool, error) { return false, nil },
	}, newMockSummaryCache(), nil)
	_, err = missing.List(context.Background(), 1, "", nil)
	assert.ErrorIs(t, err, model.ErrRestaurantNotFound)
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestReviewService_Summary_ComputesAndCaches(t *testing.T) {
	repo := &mockReviewRepository{
		ratingCountsFn: func(ctx context.Context, restaurantID int64) (map[int]int, error) {
			return map[int]int{5: 2, 3: 1}, nil
		},
	}
	summaries := newMockSummaryCache()
	svc := newTestReviewService(repo, summaries, nil)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 4.3, summary.Average, 0.001)
	require.Len(t, summary.Buckets, 2)
	assert.Equal(t, 5, summary.Buckets[0].Rating)
	assert.InDelta(t, 66.67, summary.Buckets[0].PercentOfTotal, 0.01)
	assert.InDelta(t, 33.33, summary.Buckets[1].PercentOfTotal, 0.01)
	assert.Equal(t, 1, summaries.sets)

	// Second call is served from the cache.
	_, err = svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls)
}

func TestReviewService_Summary_CountsEveryReview(t *testing.T) {
	repo := &mockReviewRepository{
		ratingCountsFn: func(ctx context.Context, restaurantID int64) (map[int]int, error) {
			return map[int]int{5: 9000, 4: 2500, 1: 500}, nil
		},
	}
	svc := newTestReviewService(repo, newMockSummaryCache(), nil)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 12000, summary.Total)

	sum := 0
	for _, b := range summary.Buckets {
		sum += b.Count
	}
	assert.Equal(t, summary.Total, sum)
	assert.InDelta(t, 4.6, summary.Average, 0.001)
	assert.Zero(t, repo.listCalls)
}

func TestReviewService_Summary_CacheErrorFallsBackToDatabase(t *testing.T) {
	repo := &mockReviewRepository{
		ratingCountsFn: func(ctx context.Context, restaurantID int64) (map[int]int, error) {
			return map[int]int{5: 2, 3: 1}, nil
		},
	}
	summaries := newMockSummaryCache()
	summaries.getErr = errors.New("redis down")
	svc := newTestReviewService(repo, summaries, nil)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
}

func TestReviewService_Summary_NoReviews(t *testing.T) {
	svc := newTestReviewService(&mockReviewRepository{}, newMockSummaryCache(), nil)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.Buckets)
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestReviewService_Create_PublishesEvent(t *testing.T) {
	repo := &mockReviewRepository{}
	pub := &mockPublisher{}
	summaries := newMockSummaryCache()
	svc := newTestReviewService(repo, summaries, pub)

	rv, err := svc.Create(context.Background(), 1, &model.CreateReviewRequest{Rating: 4, Description: "  good  "})
	require.NoError(t, err)

	assert.NotEmpty(t, rv.ID)
	assert.Equal(t, "good", rv.Description)
	assert.Equal(t, AnonymousAuthor, rv.AuthorName)
	assert.Equal(t, reviewNow, rv.CreatedAt)
	require.Len(t, repo.created, 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.EventReviewCreated, pub.events[0].Type)
	assert.Equal(t, rv.ID, pub.events[0].ReviewID)
	assert.Empty(t, summaries.invalidated, "the worker invalidates when the event is published")
}

func TestReviewService_Create_PublishFailureInvalidatesInline(t *testing.T) {
	summaries := newMockSummaryCache()
	svc := newTestReviewService(&mockReviewRepository{}, summaries, &mockPublisher{err: errors.New("xadd failed")})

	_, err := svc.Create(context.Background(), 7, &model.CreateReviewRequest{Rating: 2, AuthorName: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, summaries.invalidated)
}

func TestReviewService_Create_Validation(t *testing.T) {
	repo := &mockReviewRepository{}
	svc := newTestReviewService(repo, newMockSummaryCache(), nil)

	tests := []struct {
		name string
		req  model.CreateReviewRequest
	}{
		{"rating too low", model.CreateReviewRequest{Rating: 0}},
		{"rating too high", model.CreateReviewRequest{Rating: 6}},
		{"description too long", model.CreateReviewRequest{Rating: 3, Description: strings.Repeat("x", model.MaxReviewDescriptionLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, &tt.req)
			var vErr *model.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
	assert.Empty(t, repo.created)
}
