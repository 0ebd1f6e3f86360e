package review

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enatega_storefront/internal/model"
)

// =============================================================================
// Fixtures
// =============================================================================

var epoch = time.Unix(0, 0).UTC()

func at(sec int64) time.Time {
	return epoch.Add(time.Duration(sec) * time.Second)
}

func sampleReviews() []model.Review {
	return []model.Review{
		{ID: "a", Rating: 5, CreatedAt: at(100)},
		{ID: "b", Rating: 3, CreatedAt: at(200)},
		{ID: "c", Rating: 5, CreatedAt: at(50)},
	}
}

func mixedReviews() []model.Review {
	return []model.Review{
		{ID: "r1", Rating: 2, CreatedAt: at(10)},
		{ID: "r2", Rating: 4, CreatedAt: at(40)},
		{ID: "r3", Rating: 4, CreatedAt: at(90)},
		{ID: "r4", Rating: 1, CreatedAt: at(70)},
		{ID: "r5", Rating: 2, CreatedAt: at(80)},
		{ID: "r6", Rating: 5, CreatedAt: at(20)},
		{ID: "r7", Rating: 4, CreatedAt: at(60)},
	}
}

func ids(reviews []model.Review) []string {
	out := make([]string, len(reviews))
	for i, r := range reviews {
		out[i] = r.ID
	}
	return out
}

// =============================================================================
// AggregateByRating
// =============================================================================

func TestAggregateByRating_Example(t *testing.T) {
	buckets, err := AggregateByRating(sampleReviews(), 3)
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, 2, buckets[5].Count)
	assert.InDelta(t, 66.67, buckets[5].PercentOfTotal, 0.01)
	assert.Equal(t, 1, buckets[3].Count)
	assert.InDelta(t, 33.33, buckets[3].PercentOfTotal, 0.01)

	_, hasFour := buckets[4]
	assert.False(t, hasFour, "ratings with no reviews must be omitted")
}

func TestAggregateByRating_CountsSumToLength(t *testing.T) {
	reviews := mixedReviews()
	buckets, err := AggregateByRating(reviews, len(reviews))
	require.NoError(t, err)

	sum := 0
	for rating, b := range buckets {
		assert.Equal(t, rating, b.Rating)
		sum += b.Count
	}
	assert.Equal(t, len(reviews), sum)
}

func TestAggregateByRating_ZeroTotal(t *testing.T) {
	buckets, err := AggregateByRating(sampleReviews(), 0)
	require.NoError(t, err)

	for _, b := range buckets {
		assert.Zero(t, b.PercentOfTotal)
	}
	assert.Equal(t, 2, buckets[5].Count)
}

func TestAggregateByRating_Empty(t *testing.T) {
	buckets, err := AggregateByRating(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestAggregateByRating_InvalidRating(t *testing.T) {
	tests := []struct {
		name   string
		rating int
	}{
		{"zero", 0},
		{"negative", -1},
		{"six", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := append(sampleReviews(), model.Review{ID: "bad", Rating: tt.rating})

			buckets, err := AggregateByRating(reviews, len(reviews))

			var vErr *model.ValidationError
			require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
			assert.Equal(t, "rating", vErr.Field)
			assert.Nil(t, buckets)
		})
	}
}

// =============================================================================
// SortReviews
// =============================================================================

func TestSortReviews_NewestExample(t *testing.T) {
	sorted := SortReviews(sampleReviews(), model.SortNewest)
	assert.Equal(t, []string{"b", "a", "c"}, ids(sorted))
}

func TestSortReviews_Orderings(t *testing.T) {
	tests := []struct {
		key  model.SortKey
		want []string
	}{
		{model.SortNewest, []string{"r3", "r5", "r4", "r7", "r2", "r6", "r1"}},
		{model.SortHighest, []string{"r6", "r3", "r7", "r2", "r5", "r1", "r4"}},
		{model.SortLowest, []string{"r4", "r5", "r1", "r3", "r7", "r2", "r6"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SortReviews(mixedReviews(), tt.key)))
		})
	}
}

func TestSortReviews_IsPermutation(t *testing.T) {
	input := mixedReviews()
	want := ids(input)
	sort.Strings(want)

	for _, key := range []model.SortKey{model.SortNewest, model.SortHighest, model.SortLowest} {
		got := ids(SortReviews(input, key))
		sort.Strings(got)
		assert.Equal(t, want, got, "key=%s", key)
	}
}

func TestSortReviews_RatingMonotonic(t *testing.T) {
	highest := SortReviews(mixedReviews(), model.SortHighest)
	for i := 1; i < len(highest); i++ {
		assert.LessOrEqual(t, highest[i].Rating, highest[i-1].Rating)
	}

	lowest := SortReviews(mixedReviews(), model.SortLowest)
	for i := 1; i < len(lowest); i++ {
		assert.GreaterOrEqual(t, lowest[i].Rating, lowest[i-1].Rating)
	}
}

func TestSortReviews_DoesNotMutateInput(t *testing.T) {
	input := mixedReviews()
	before := ids(input)

	_ = SortReviews(input, model.SortHighest)

	assert.Equal(t, before, ids(input))
}

func TestSortReviews_Empty(t *testing.T) {
	sorted := SortReviews(nil, model.SortNewest)
	assert.NotNil(t, sorted)
	assert.Empty(t, sorted)
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    model.SortKey
		wantErr bool
	}{
		{"", model.SortNewest, false},
		{"newest", model.SortNewest, false},
		{"HIGHEST", model.SortHighest, false},
		{" lowest ", model.SortLowest, false},
		{"oldest", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidSortKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// RelativeAge / Summarize
// =============================================================================

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		want      string
	}{
		{"same instant", now, "today"},
		{"hours earlier", now.Add(-23 * time.Hour), "today"},
		{"three days", now.Add(-3 * 24 * time.Hour), "3 days ago"},
		{"three and a half days", now.Add(-84 * time.Hour), "3 days ago"},
		{"future clock skew", now.Add(48 * time.Hour), "today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeAge(tt.createdAt, now))
		})
	}
}

func TestLabel(t *testing.T) {
	now := at(3 * 86400)
	items := Label(SortReviews(sampleReviews(), model.SortNewest), now)

	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "2 days ago", items[0].Age)
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(7, sampleReviews(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(7), summary.RestaurantID)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 4.3, summary.Average, 0.001)
	require.Len(t, summary.Buckets, 2)
	assert.Equal(t, 5, summary.Buckets[0].Rating)
	assert.Equal(t, 3, summary.Buckets[1].Rating)
}

func TestSummarize_Empty(t *testing.T) {
	summary, err := Summarize(1, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, summary.Average)
	assert.Empty(t, summary.Buckets)
}

func TestSummarizeCounts(t *testing.T) {
	summary, err := SummarizeCounts(9, map[int]int{5: 12000, 1: 1, 3: 0})
	require.NoError(t, err)

	assert.Equal(t, 12001, summary.Total)
	require.Len(t, summary.Buckets, 2, "zero counts are omitted")
	assert.Equal(t, 5, summary.Buckets[0].Rating)
	assert.Equal(t, 12000, summary.Buckets[0].Count)
	assert.Equal(t, 1, summary.Buckets[1].Rating)
	assert.InDelta(t, 100*1/12001.0, summary.Buckets[1].PercentOfTotal, 1e-9)
	assert.InDelta(t, 5.0, summary.Average, 0.001)

	sum := 0
	for _, b := range summary.Buckets {
		sum += b.Count
	}
	assert.Equal(t, summary.Total, sum)
}

func TestSummarizeCounts_RejectsInvalidRating(t *testing.T) {
	_, err := SummarizeCounts(1, map[int]int{7: 2})
	var vErr *model.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
