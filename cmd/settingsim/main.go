// Command settingsim is an interactive stand-in for the app's notification
// settings screen. It reads commands from stdin and talks to a running
// storefront API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/term"

	"enatega_storefront/internal/client"
	"enatega_storefront/internal/config"
	"enatega_storefront/internal/device"
	"enatega_storefront/internal/logger"
	"enatega_storefront/internal/model"
	"enatega_storefront/internal/settingsim"
	"enatega_storefront/internal/transport/http/middleware"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	apiURL := flag.String("api", cfg.StorefrontAPIURL, "storefront API base URL")
	token := flag.String("token", cfg.StorefrontAPIToken, "bearer token of the signed-in user")
	userID := flag.Int64("user", 0, "mint a token for this user with JWT_SECRET when -token is empty")
	dataDir := flag.String("data", filepath.Join(xdg.DataHome, "enatega-settingsim"), "device storage directory, empty for in-memory")
	permission := flag.String("permission", string(model.PermissionUndetermined), "initial OS notification permission")
	simulator := flag.Bool("simulator", false, "behave like a simulator without push support")
	rollback := flag.Bool("rollback", cfg.RollbackOnFailure, "revert a toggle when the remote update fails")
	logLevel := flag.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	appLogger := logger.NewWithWriter(os.Stderr, *logLevel)

	if *token == "" && *userID > 0 {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required to mint a token")
		}
		*token, err = middleware.IssueToken(*userID, cfg.JWTSecret, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
	}

	storage, err := device.OpenStorage(*dataDir)
	if err != nil {
		log.Fatalf("Failed to open device storage: %v", err)
	}
	defer storage.Close()

	session := settingsim.New(settingsim.Config{
		Client:   client.New(*apiURL, *token, appLogger),
		Device:   device.NewSimulator(model.PermissionState(*permission), !*simulator, appLogger),
		Storage:  storage,
		Rollback: *rollback,
		Prompt:   term.IsTerminal(int(os.Stdin.Fd())),
		Out:      os.Stdout,
		Logger:   appLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx, os.Stdin); err != nil {
		appLogger.Error("settings session failed", "err", err)
	}
}
