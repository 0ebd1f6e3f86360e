package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enatega_storefront/internal/cache"
	"enatega_storefront/internal/config"
	"enatega_storefront/internal/database"
	"enatega_storefront/internal/handler"
	"enatega_storefront/internal/logger"
	"enatega_storefront/internal/queue"
	"enatega_storefront/internal/redis"
	"enatega_storefront/internal/repository"
	"enatega_storefront/internal/service"
	"enatega_storefront/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database and Redis
	db, err := database.Connect(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return err
	}

	// 3. Repositories, caches and stream
	reviewRepo := repository.NewReviewRepository(db)
	profileRepo := repository.NewNotificationProfileRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)

	summaries := cache.NewReviewSummaryCache(rdb.Client, cfg.ReviewSummaryTTL, log)
	languages := cache.NewLanguageStore(rdb.Client)
	publisher := queue.NewPublisher(rdb.Client, log)

	push, err := newPushSender(ctx, cfg, log)
	if err != nil {
		return err
	}

	// 4. Services
	reviewService := service.NewReviewService(reviewRepo, summaries, publisher, log)
	notifService := service.NewNotificationService(profileRepo, tokenRepo, publisher, push, log)
	languageService := service.NewLanguageService(languages, log)

	// 5. Workers
	eventHandler := worker.NewHandler(summaries, log)
	eventHandler.SetPreferenceConfirmer(notifService)
	eventHandler.SetPushDispatcher(notifService)
	manager := worker.NewManager(queue.NewConsumer(rdb.Client, log), eventHandler, worker.ManagerConfig{
		WorkerCount: cfg.WorkerCount,
	}, log)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer manager.Stop()

	// 6. HTTP server
	router := NewRouter(RouterConfig{
		ReviewHandler:       handler.NewReviewHandler(reviewService, log),
		NotificationHandler: handler.NewNotificationHandler(notifService, log),
		LanguageHandler:     handler.NewLanguageHandler(languageService, log),
		JWTSecret:           cfg.JWTSecret,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "push_provider", cfg.PushProvider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPushSender picks the push backend from PUSH_PROVIDER. "none" disables push.
func newPushSender(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.PushSender, error) {
	switch cfg.PushProvider {
	case config.PushProviderFCM:
		fcm, err := service.NewFCMClient(ctx, cfg.FCMProjectID, cfg.FCMClientEmail, cfg.FCMPrivateKey, log)
		if err != nil {
			return nil, fmt.Errorf("init fcm: %w", err)
		}
		return fcm, nil
	case config.PushProviderNone:
		log.Warn("push notifications disabled")
		return nil, nil
	default:
		return service.NewExpoPushClient("", log), nil
	}
}
