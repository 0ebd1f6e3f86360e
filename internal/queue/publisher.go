package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event StorefrontEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{client: client, logger: logger.With("component", "Publisher")}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event StorefrontEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		p.logger.Error("publish failed", "stream", stream, "type", event.Type, "err", err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		p.logger.Error("publish failed", "stream", stream, "type", event.Type, "err", err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.logger.Info("publish ok", "stream", stream, "type", event.Type, "msg_id", messageID, "duration", time.Since(startTime))

	switch event.Type {
	case EventReviewCreated:
		p.logger.Debug("review event", "restaurant", event.RestaurantID, "review", event.ReviewID)
	case EventPreferencesUpdated:
		p.logger.Debug("preferences event", "user", event.UserID)
	}

	return messageID, nil
}
