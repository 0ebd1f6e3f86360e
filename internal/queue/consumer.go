package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message represents a message read from a Redis stream.
type Message struct {
	ID    string          // Redis message ID (e.g., "1702000000000-0")
	Event StorefrontEvent // Parsed event data
}

// Consumer defines the interface for consuming events from a stream.
type Consumer interface {
	// EnsureGroup creates the consumer group if it doesn't exist.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read reads new messages for this consumer with XREADGROUP.
	// block: how long to block waiting for new messages (0 = forever)
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending reads messages delivered to this consumer but not yet acknowledged.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	// Ack acknowledges that a message has been processed.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error

	// Pending returns the number of pending (unacknowledged) messages for the group.
	Pending(ctx context.Context, stream, group string) (int64, error)
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
	logger *slog.Logger
}

// NewConsumer creates a new Consumer backed by Redis Streams.
func NewConsumer(client *redis.Client, logger *slog.Logger) Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisConsumer{client: client, logger: logger.With("component", "Consumer")}
}

// EnsureGroup creates the group (and the stream) starting from the beginning of the stream.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			c.logger.Debug("group exists", "stream", stream, "group", group)
			return nil
		}
		c.logger.Error("ensure group failed", "stream", stream, "group", group, "err", err)
		return fmt.Errorf("create consumer group: %w", err)
	}

	c.logger.Info("group created", "stream", stream, "group", group)
	return nil
}

// Read reads never-delivered messages (">").
func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.read(ctx, stream, group, consumer, ">", count, block)
}

// ReadPending re-reads this consumer's unacknowledged messages ("0").
// Used at startup to recover messages that were in flight during a crash.
func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	return c.read(ctx, stream, group, consumer, "0", count, -1)
}

func (c *RedisConsumer) read(ctx context.Context, stream, group, consumer, id string, count int64, block time.Duration) ([]Message, error) {
	startTime := time.Now()

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, id},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("read failed", "stream", stream, "group", group, "consumer", consumer, "id", id, "err", err)
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	messages := parseMessages(c.logger, streams)

	if len(messages) > 0 {
		c.logger.Debug("read ok", "stream", stream, "consumer", consumer, "id", id,
			"count", len(messages), "duration", time.Since(startTime))
	}
	return messages, nil
}

// parseMessages converts raw stream entries; malformed entries are skipped.
func parseMessages(logger *slog.Logger, streams []redis.XStream) []Message {
	var messages []Message
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParseStorefrontEvent(msg.Values)
			if err != nil {
				logger.Warn("skip malformed message", "msg_id", msg.ID, "err", err)
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}
	return messages
}

// Ack acknowledges messages using XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	acked, err := c.client.XAck(ctx, stream, group, messageIDs...).Result()
	if err != nil {
		c.logger.Error("ack failed", "stream", stream, "group", group, "ids", messageIDs, "err", err)
		return fmt.Errorf("xack: %w", err)
	}

	c.logger.Debug("ack ok", "stream", stream, "group", group, "acked", acked)
	return nil
}

// Pending returns the count of pending messages for the consumer group.
func (c *RedisConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	info, err := c.client.XPending(ctx, stream, group).Result()
	if err != nil {
		c.logger.Error("pending failed", "stream", stream, "group", group, "err", err)
		return 0, fmt.Errorf("xpending: %w", err)
	}
	return info.Count, nil
}
