package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"enatega_storefront/internal/model"
)

// LanguageStore persists the selected UI language per user.
type LanguageStore interface {
	// Get returns the stored language code. found=false when nothing is stored.
	Get(ctx context.Context, userID int64) (code string, found bool, err error)

	// Set stores a language code without expiry.
	Set(ctx context.Context, userID int64, code string) error
}

// RedisLanguageStore implements LanguageStore with one string key per user.
type RedisLanguageStore struct {
	client *redis.Client
}

// NewLanguageStore creates a LanguageStore backed by Redis.
func NewLanguageStore(client *redis.Client) LanguageStore {
	return &RedisLanguageStore{client: client}
}

func languageKey(userID int64) string {
	return fmt.Sprintf("%s:%d", model.LanguageStorageKey, userID)
}

func (s *RedisLanguageStore) Get(ctx context.Context, userID int64) (string, bool, error) {
	code, err := s.client.Get(ctx, languageKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get language: %w", err)
	}
	return code, true, nil
}

func (s *RedisLanguageStore) Set(ctx context.Context, userID int64, code string) error {
	if err := s.client.Set(ctx, languageKey(userID), code, 0).Err(); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}
