package service

import (
	"context"
	"sync"
	"time"

	"enatega_storefront/internal/model"
	"enatega_storefront/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Each mock exposes function fields so a test can define the behaviour it
// needs, and records calls for assertions.

type mockReviewRepository struct {
	createFn           func(ctx context.Context, review *model.Review) error
	listFn             func(ctx context.Context, restaurantID int64, key model.SortKey, ratings []int, limit int) ([]model.Review, error)
	ratingCountsFn     func(ctx context.Context, restaurantID int64) (map[int]int, error)
	restaurantExistsFn func(ctx context.Context, restaurantID int64) (bool, error)

	created    []*model.Review
	listCalls  int
	countCalls int
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	m.created = append(m.created, review)
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	return nil
}

func (m *mockReviewRepository) List(ctx context.Context, restaurantID int64, key model.SortKey, ratings []int, limit int) ([]model.Review, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx, restaurantID, key, ratings, limit)
	}
	return []model.Review{}, nil
}

func (m *mockReviewRepository) RatingCounts(ctx context.Context, restaurantID int64) (map[int]int, error) {
	m.countCalls++
	if m.ratingCountsFn != nil {
		return m.ratingCountsFn(ctx, restaurantID)
	}
	return map[int]int{}, nil
}

func (m *mockReviewRepository) RestaurantExists(ctx context.Context, restaurantID int64) (bool, error) {
	if m.restaurantExistsFn != nil {
		return m.restaurantExistsFn(ctx, restaurantID)
	}
	return true, nil
}

type mockProfileRepository struct {
	getFn              func(ctx context.Context, userID int64) (*model.NotificationProfile, error)
	updateFlagsFn      func(ctx context.Context, userID int64, offer, order bool) error
	filterSubscribedFn func(ctx context.Context, category string, userIDs []int64) ([]int64, error)

	updates []flagUpdate
}

type flagUpdate struct {
	UserID int64
	Offer  bool
	Order  bool
}

func (m *mockProfileRepository) Get(ctx context.Context, userID int64) (*model.NotificationProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return &model.NotificationProfile{}, nil
}

func (m *mockProfileRepository) UpdateFlags(ctx context.Context, userID int64, offer, order bool) error {
	m.updates = append(m.updates, flagUpdate{UserID: userID, Offer: offer, Order: order})
	if m.updateFlagsFn != nil {
		return m.updateFlagsFn(ctx, userID, offer, order)
	}
	return nil
}

func (m *mockProfileRepository) FilterSubscribed(ctx context.Context, category string, userIDs []int64) ([]int64, error) {
	if m.filterSubscribedFn != nil {
		return m.filterSubscribedFn(ctx, category, userIDs)
	}
	return userIDs, nil
}

type mockTokenRepository struct {
	tokens map[int64][]model.DeviceToken

	upserts []model.DeviceToken
	deleted []string
}

func (m *mockTokenRepository) Upsert(ctx context.Context, userID int64, token, platform string) error {
	m.upserts = append(m.upserts, model.DeviceToken{UserID: userID, Token: token, Platform: platform})
	return nil
}

func (m *mockTokenRepository) GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
	return m.tokens[userID], nil
}

func (m *mockTokenRepository) GetByUserIDs(ctx context.Context, userIDs []int64) ([]model.DeviceToken, error) {
	var out []model.DeviceToken
	for _, id := range userIDs {
		out = append(out, m.tokens[id]...)
	}
	return out, nil
}

func (m *mockTokenRepository) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

// =============================================================================
// MOCK CACHE / QUEUE / PUSH
// =============================================================================

type mockSummaryCache struct {
	entries     map[int64]*model.ReviewSummary
	getErr      error
	invalidated []int64
	sets        int
}

func newMockSummaryCache() *mockSummaryCache {
	return &mockSummaryCache{entries: make(map[int64]*model.ReviewSummary)}
}

func (m *mockSummaryCache) Get(ctx context.Context, restaurantID int64) (*model.ReviewSummary, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	s, ok := m.entries[restaurantID]
	return s, ok, nil
}

func (m *mockSummaryCache) Set(ctx context.Context, summary *model.ReviewSummary) error {
	m.sets++
	m.entries[summary.RestaurantID] = summary
	return nil
}

func (m *mockSummaryCache) Invalidate(ctx context.Context, restaurantID int64) error {
	m.invalidated = append(m.invalidated, restaurantID)
	delete(m.entries, restaurantID)
	return nil
}

type mockPublisher struct {
	err    error
	events []queue.StorefrontEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.StorefrontEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}

type pushCall struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

type mockPushSender struct {
	mu    sync.Mutex
	calls []pushCall
	err   error
}

func (m *mockPushSender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pushCall{Tokens: tokens, Title: title, Body: body, Data: data})
	return m.err
}

type mockLanguageStore struct {
	codes  map[int64]string
	getErr error
}

func (m *mockLanguageStore) Get(ctx context.Context, userID int64) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	code, ok := m.codes[userID]
	return code, ok, nil
}

func (m *mockLanguageStore) Set(ctx context.Context, userID int64, code string) error {
	if m.codes == nil {
		m.codes = make(map[int64]string)
	}
	m.codes[userID] = code
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
