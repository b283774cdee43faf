package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stillwater-dev/inboxd/internal/config"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/handlers"
	"github.com/stillwater-dev/inboxd/internal/logger"
	"github.com/stillwater-dev/inboxd/internal/middleware"
	"github.com/stillwater-dev/inboxd/internal/queue"
	"github.com/stillwater-dev/inboxd/internal/services/classifier"
	"github.com/stillwater-dev/inboxd/internal/services/retention"
	"github.com/stillwater-dev/inboxd/internal/services/review"
	"github.com/stillwater-dev/inboxd/internal/services/search"
	"github.com/stillwater-dev/inboxd/internal/services/triage"
	"github.com/stillwater-dev/inboxd/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("classifier_url", cfg.ClassifierURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "inboxd-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Redis backs rate limiting and the swipe undo window
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	jobQueue := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	// Repositories
	itemRepo := database.NewItemRepository(db)
	actionRepo := database.NewActionRepository(db)
	feedbackRepo := database.NewFeedbackRepository(db)
	indexRepo := database.NewSearchIndexRepository(db)

	// Services
	clsClient := classifier.NewClient(cfg.ClassifierURL, cfg.BaseURL+"/api/callback", cfg.DispatchTimeout, zapLogger)
	settingsResolver := retention.DefaultSettingsResolver{}
	triageEngine := triage.NewEngine(itemRepo, zapLogger)
	dispatcher := triage.NewDispatcher(itemRepo, clsClient, jobQueue, zapLogger)
	indexer := search.NewIndexer(itemRepo, indexRepo, zapLogger)
	undoStore := review.NewRedisUndoStore(redisClient)
	reviewSvc := review.NewService(itemRepo, actionRepo, feedbackRepo, undoStore, cfg.UndoWindow, zapLogger)
	retentionSvc := retention.NewService(itemRepo, settingsResolver, cfg.ProcessingTimeout, zapLogger)

	// Handlers
	itemHandler := handlers.NewItemHandler(itemRepo, actionRepo, feedbackRepo, dispatcher, indexer, zapLogger)
	callbackHandler := handlers.NewCallbackHandler(itemRepo, triageEngine, settingsResolver, indexer, zapLogger)
	reviewHandler := handlers.NewReviewHandler(reviewSvc, retentionSvc, settingsResolver, zapLogger)
	sweepHandler := handlers.NewSweepHandler(retentionSvc, indexer, cfg.ReindexBatchSize, zapLogger)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.DependencyCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		"rabbitmq":   jobQueue.HealthCheck,
		"classifier": clsClient.HealthCheck,
	}, zapLogger)

	r := mux.NewRouter()

	// Middleware executes in registration order, outermost first
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("inboxd-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit(redisClient, "10-S")
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Health endpoints stay public and unlimited
	healthHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api").Subrouter()

	// Classification callback, authenticated by shared secret
	callbackRouter := apiRouter.PathPrefix("").Subrouter()
	callbackRouter.Use(middleware.SharedSecret(middleware.CallbackSecretHeader, cfg.CallbackSecret, zapLogger))
	callbackHandler.RegisterRoutes(callbackRouter)

	// User-facing capture and review routes
	userRouter := apiRouter.PathPrefix("").Subrouter()
	userRouter.Use(middleware.UserContext(zapLogger))
	userRouter.Use(rateLimitMW)
	itemHandler.RegisterRoutes(userRouter.PathPrefix("/items").Subrouter())
	reviewHandler.RegisterRoutes(userRouter)

	// Operational sweep triggers, authenticated by internal secret
	internalRouter := r.PathPrefix("/internal").Subrouter()
	internalRouter.Use(middleware.SharedSecret(middleware.InternalSecretHeader, cfg.InternalSecret, zapLogger))
	sweepHandler.RegisterRoutes(internalRouter)

	// Preflight requests short-circuit after the CORS middleware sets headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	gcCtx, gcCancel := context.WithCancel(context.Background())
	defer gcCancel()

	// Drop dead-lettered dispatch jobs after a day so the DLQ cannot grow
	// without bound
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(gcCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	gcCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRabbitMQ retries with exponential backoff so the server survives
// broker startup delays in compose environments.
func connectRabbitMQ(amqpURL string, zapLogger *zap.Logger) queue.JobQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}
