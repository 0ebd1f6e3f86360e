package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Push providers
const (
	PushProviderExpo = "expo"
	PushProviderFCM  = "fcm"
	PushProviderNone = "none"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	ServerPort string
	LogLevel   string

	JWTSecret string

	PushProvider       string
	FCMProjectID       string
	FCMClientEmail     string
	FCMPrivateKey      string
	ReviewSummaryTTL   time.Duration
	WorkerCount        int
	StorefrontAPIURL   string
	StorefrontAPIToken string
	RollbackOnFailure  bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	pushProvider := os.Getenv("PUSH_PROVIDER")
	switch pushProvider {
	case PushProviderExpo, PushProviderFCM, PushProviderNone:
	default:
		pushProvider = PushProviderExpo
	}

	summaryTTLSeconds, err := strconv.Atoi(os.Getenv("REVIEW_SUMMARY_TTL"))
	if err != nil || summaryTTLSeconds <= 0 {
		summaryTTLSeconds = 600
	}

	workerCount, err := strconv.Atoi(os.Getenv("WORKER_COUNT"))
	if err != nil || workerCount <= 0 {
		workerCount = 2
	}

	apiURL := os.Getenv("STOREFRONT_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:" + serverPort
	}

	rollback, err := strconv.ParseBool(os.Getenv("ROLLBACK_ON_FAILURE"))
	if err != nil {
		rollback = true
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		RedisURL: redisURL,

		ServerPort: serverPort,
		LogLevel:   logLevel,

		JWTSecret: os.Getenv("JWT_SECRET"),

		PushProvider:   pushProvider,
		FCMProjectID:   os.Getenv("FCM_PROJECT_ID"),
		FCMClientEmail: os.Getenv("FCM_CLIENT_EMAIL"),
		FCMPrivateKey:  os.Getenv("FCM_PRIVATE_KEY"),

		ReviewSummaryTTL: time.Duration(summaryTTLSeconds) * time.Second,
		WorkerCount:      workerCount,

		StorefrontAPIURL:   apiURL,
		StorefrontAPIToken: os.Getenv("STOREFRONT_API_TOKEN"),
		RollbackOnFailure:  rollback,
	}, nil
}
