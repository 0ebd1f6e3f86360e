// Package review turns a restaurant's raw reviews into display statistics.
//
// Every function here is pure: inputs are never mutated and nothing is
// retained between calls, so callers may use them from any goroutine.
package review

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"enatega_storefront/internal/model"
)

const day = 24 * time.Hour

// ParseSortKey converts a query value into a SortKey.
// An empty value selects SortNewest.
func ParseSortKey(v string) (model.SortKey, error) {
	switch model.SortKey(strings.ToLower(strings.TrimSpace(v))) {
	case "", model.SortNewest:
		return model.SortNewest, nil
	case model.SortHighest:
		return model.SortHighest, nil
	case model.SortLowest:
		return model.SortLowest, nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrInvalidSortKey, v)
	}
}

// ValidateRating fails when rating is outside [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return &model.ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", model.MinRating, model.MaxRating, rating),
		}
	}
	return nil
}

// AggregateByRating groups reviews by rating.
//
// The result is sparse: ratings nobody gave are absent. PercentOfTotal is
// 100*count/total, or 0 for every bucket when total is 0. A rating outside
// [1,5] aborts the call with a *model.ValidationError.
func AggregateByRating(reviews []model.Review, total int) (map[int]model.RatingBucket, error) {
	counts := make(map[int]int)
	for _, r := range reviews {
		if err := ValidateRating(r.Rating); err != nil {
			return nil, fmt.Errorf("review %s: %w", r.ID, err)
		}
		counts[r.Rating]++
	}
	return AggregateCounts(counts, total)
}

// AggregateCounts is AggregateByRating over precomputed per-rating counts,
// e.g. from a GROUP BY. Ratings with a zero count are omitted.
func AggregateCounts(counts map[int]int, total int) (map[int]model.RatingBucket, error) {
	buckets := make(map[int]model.RatingBucket, len(counts))
	for rating, count := range counts {
		if err := ValidateRating(rating); err != nil {
			return nil, err
		}
		if count <= 0 {
			continue
		}
		b := model.RatingBucket{Rating: rating, Count: count}
		if total > 0 {
			b.PercentOfTotal = 100 * float64(count) / float64(total)
		}
		buckets[rating] = b
	}
	return buckets, nil
}

// SortedRatings returns the bucket keys from highest to lowest rating.
func SortedRatings(buckets map[int]model.RatingBucket) []int {
	ratings := make([]int, 0, len(buckets))
	for rating := range buckets {
		ratings = append(ratings, rating)
	}
	slices.Sort(ratings)
	slices.Reverse(ratings)
	return ratings
}

// Summarize builds the histogram and average rating of a restaurant.
// total is the restaurant's review count as reported by the store and is
// used as the percentage denominator.
func Summarize(restaurantID int64, reviews []model.Review, total int) (model.ReviewSummary, error) {
	buckets, err := AggregateByRating(reviews, total)
	if err != nil {
		return model.ReviewSummary{}, err
	}
	return summary(restaurantID, buckets, total), nil
}

// SummarizeCounts builds the summary from per-rating counts covering every
// review of the restaurant; Total is their sum.
func SummarizeCounts(restaurantID int64, counts map[int]int) (model.ReviewSummary, error) {
	total := 0
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}
	buckets, err := AggregateCounts(counts, total)
	if err != nil {
		return model.ReviewSummary{}, err
	}
	return summary(restaurantID, buckets, total), nil
}

func summary(restaurantID int64, buckets map[int]model.RatingBucket, total int) model.ReviewSummary {
	out := model.ReviewSummary{
		RestaurantID: restaurantID,
		Total:        total,
		Buckets:      make([]model.RatingBucket, 0, len(buckets)),
	}

	sum, n := 0, 0
	for _, rating := range SortedRatings(buckets) {
		b := buckets[rating]
		out.Buckets = append(out.Buckets, b)
		sum += b.Rating * b.Count
		n += b.Count
	}
	if n > 0 {
		out.Average = math.Round(float64(sum)/float64(n)*10) / 10
	}
	return out
}

// SortReviews returns a new slice ordered by key. The input is not modified.
//
//   - newest:  createdAt descending
//   - highest: rating descending, then createdAt descending
//   - lowest:  rating ascending, then createdAt descending
//
// Remaining ties keep their input order.
func SortReviews(reviews []model.Review, key model.SortKey) []model.Review {
	sorted := slices.Clone(reviews)
	if sorted == nil {
		sorted = []model.Review{}
	}

	newestFirst := func(a, b model.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	}

	switch key {
	case model.SortHighest:
		slices.SortStableFunc(sorted, func(a, b model.Review) int {
			if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
				return c
			}
			return newestFirst(a, b)
		})
	case model.SortLowest:
		slices.SortStableFunc(sorted, func(a, b model.Review) int {
			if c := cmp.Compare(a.Rating, b.Rating); c != 0 {
				return c
			}
			return newestFirst(a, b)
		})
	default:
		slices.SortStableFunc(sorted, newestFirst)
	}
	return sorted
}

// RelativeAge labels createdAt relative to now in whole days.
// A createdAt in the future counts as today.
func RelativeAge(createdAt, now time.Time) string {
	days := int64(now.Sub(createdAt) / day)
	if days <= 0 {
		return "today"
	}
	return fmt.Sprintf("%d days ago", days)
}

// Label pairs every review with its relative age, preserving order.
func Label(reviews []model.Review, now time.Time) []model.ReviewListItem {
	items := make([]model.ReviewListItem, len(reviews))
	for i, r := range reviews {
		items[i] = model.ReviewListItem{
			Review: r,
			Age:    RelativeAge(r.CreatedAt, now),
		}
	}
	return items
}
