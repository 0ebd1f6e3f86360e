// Command dispatch queues an offer or order push for a set of users on the
// storefront stream. The server's workers deliver it to the users that
// opted into the category.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"enatega_storefront/internal/config"
	"enatega_storefront/internal/logger"
	"enatega_storefront/internal/model"
	"enatega_storefront/internal/queue"
	"enatega_storefront/internal/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	category := flag.String("category", model.PushCategoryOffer, "offer or order")
	users := flag.String("users", "", "comma-separated user ids")
	title := flag.String("title", "", "push title")
	body := flag.String("body", "", "push body")
	flag.Parse()

	event, err := buildEvent(*category, *users, *title, *body)
	if err != nil {
		log.Fatalf("Invalid push: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)

	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := queue.NewPublisher(rdb.Client, appLogger).Publish(ctx, queue.StreamStorefront, event)
	if err != nil {
		appLogger.Error("publish push request failed", "err", err)
		cancel()
		rdb.Close()
		os.Exit(1)
	}
	appLogger.Info("push request queued", "id", id, "category", event.Category, "users", len(event.UserIDs))
}

func buildEvent(category, users, title, body string) (queue.StorefrontEvent, error) {
	if category != model.PushCategoryOffer && category != model.PushCategoryOrder {
		return queue.StorefrontEvent{}, fmt.Errorf("unknown category %q", category)
	}
	if strings.TrimSpace(title) == "" {
		return queue.StorefrontEvent{}, fmt.Errorf("title is required")
	}

	ids, err := parseUserIDs(users)
	if err != nil {
		return queue.StorefrontEvent{}, err
	}
	return queue.NewPushRequestedEvent(category, ids, title, body), nil
}

func parseUserIDs(v string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one user id is required")
	}
	return ids, nil
}
