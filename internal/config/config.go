package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/stillwater-dev/inboxd/internal/models"
)

// Config holds application configuration
type Config struct {
	DatabaseURL       string
	ServerPort        string
	BaseURL           string
	FrontendURL       string
	RedisURL          string
	RabbitMQURL       string
	RabbitMQPrefetch  int
	ClassifierURL     string
	CallbackSecret    string
	InternalSecret    string
	DispatchTimeout   time.Duration
	ProcessingTimeout time.Duration
	UndoWindow        time.Duration
	ReindexBatchSize  int
	EnableHSTS        bool
	ServerDebugMode   bool
	WorkerDebugMode   bool
	OTELEnabled       bool
	OTELEndpoint      string
}

// Load loads configuration from environment variables. Required values fail
// fast; secrets have no defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:  getEnvInt("RABBITMQ_PREFETCH", 1),
		ClassifierURL:     getEnv("CLASSIFIER_URL", ""),
		CallbackSecret:    getEnv("CALLBACK_SECRET", ""),
		InternalSecret:    getEnv("INTERNAL_SECRET", ""),
		DispatchTimeout:   getEnvDuration("DISPATCH_TIMEOUT", 10*time.Second),
		ProcessingTimeout: getEnvDuration("PROCESSING_TIMEOUT", 10*time.Minute),
		UndoWindow:        getEnvDuration("UNDO_WINDOW", 5*time.Second),
		ReindexBatchSize:  getEnvInt("REINDEX_BATCH_SIZE", 50),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:   getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is required", models.ErrConfiguration)
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("%w: RABBITMQ_URL is required for dispatch job queueing", models.ErrConfiguration)
	}

	if cfg.ClassifierURL == "" {
		return nil, fmt.Errorf("%w: CLASSIFIER_URL is required", models.ErrConfiguration)
	}

	// The callback secret has no default. Running without it would leave the
	// classification callback open to anyone.
	if cfg.CallbackSecret == "" {
		return nil, fmt.Errorf("%w: CALLBACK_SECRET is required", models.ErrConfiguration)
	}

	if cfg.InternalSecret == "" {
		return nil, fmt.Errorf("%w: INTERNAL_SECRET is required for sweep/reindex triggers", models.ErrConfiguration)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
