package model

import (
	"time"
)

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5

	MaxReviewDescriptionLength = 1000
)

// Review is a single restaurant review. Immutable once fetched.
type Review struct {
	ID           string    `db:"id" json:"id"`
	RestaurantID int64     `db:"restaurant_id" json:"restaurant_id"`
	Rating       int       `db:"rating" json:"rating"`
	Description  string    `db:"description" json:"description"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RatingBucket groups the reviews sharing one rating value.
type RatingBucket struct {
	Rating         int     `json:"rating"`
	Count          int     `json:"count"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// SortKey selects the ordering applied to a review list.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortHighest SortKey = "highest"
	SortLowest  SortKey = "lowest"
)

// ReviewSummary is the rating histogram of a restaurant.
// Buckets are ordered by rating, highest first.
type ReviewSummary struct {
	RestaurantID int64          `json:"restaurant_id"`
	Total        int            `json:"total"`
	Average      float64        `json:"average"`
	Buckets      []RatingBucket `json:"buckets"`
}

// ReviewListItem is a review with its display-ready relative age.
type ReviewListItem struct {
	Review
	Age string `json:"age"`
}

// ReviewListResponse is the response of GET /restaurants/{id}/reviews.
type ReviewListResponse struct {
	Sort    SortKey          `json:"sort"`
	Reviews []ReviewListItem `json:"reviews"`
}

// CreateReviewRequest is the request body for POST /restaurants/{id}/reviews.
type CreateReviewRequest struct {
	Rating      int    `json:"rating"`
	Description string `json:"description"`
	AuthorName  string `json:"author_name"`
}
