package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/config"
	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/directive"
	"github.com/syntra-learn/syntra-api/internal/handlers"
	"github.com/syntra-learn/syntra-api/internal/logger"
	"github.com/syntra-learn/syntra-api/internal/middleware"
	"github.com/syntra-learn/syntra-api/internal/queue"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
	chatsvc "github.com/syntra-learn/syntra-api/internal/services/chat"
	"github.com/syntra-learn/syntra-api/internal/services/oidc"
	"github.com/syntra-learn/syntra-api/internal/store"
	"github.com/syntra-learn/syntra-api/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
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
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "syntra-api", cfg.OTELEndpoint)
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

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(setupCtx); err != nil {
		setupCancel()
		zapLogger.Fatal("failed_to_ensure_schema", zap.Error(err))
	}
	if err := db.EnsureChangeTriggers(setupCtx); err != nil {
		setupCancel()
		zapLogger.Fatal("failed_to_ensure_change_triggers", zap.Error(err))
	}
	setupCancel()
	zapLogger.Info("connected_to_database")

	// Redis backs the rate limiter
	redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// RabbitMQ carries welcome-email jobs. Retry with backoff to ride out
	// broker startup delays.
	jobQueue := connectQueue(cfg, zapLogger)
	if jobQueue != nil {
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
	}

	// Repositories
	taskRepo := database.NewTaskRepository(db)
	chatRepo := database.NewChatRepository(db)
	roadmapRepo := database.NewRoadmapRepository(db)
	profileRepo := database.NewProfileRepository(db)
	inboxRepo := database.NewInboxRepository(db)
	userRepo := database.NewUserRepository(db)

	// Sync store fronting the planner state
	syncStore := store.NewSync(taskRepo, chatRepo, roadmapRepo, zapLogger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	listener, err := database.NewChangeListener(cfg.DatabaseURL, zapLogger)
	if err != nil {
		zapLogger.Warn("change_listener_unavailable", zap.Error(err))
	} else {
		go listener.Run(watchCtx)
		go syncStore.WatchChanges(watchCtx, listener.Changes())
	}

	// AI provider; without credentials every AI surface degrades gracefully
	var aiProvider ai.AIProvider
	if cfg.AIKey == "" {
		zapLogger.Warn("ai_key_not_configured_ai_features_disabled")
		aiProvider = ai.DisabledProvider{}
	} else {
		aiProvider = ai.NewOpenAIProviderWithLogger(cfg.AIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	}

	applier := directive.NewApplier(syncStore, nil, zapLogger)
	chatService := chatsvc.NewService(syncStore, profileRepo, aiProvider, applier, zapLogger)

	// Auth
	jwksManager := oidc.NewJWKSManager(watchCtx)
	var oidcClient *oidc.Client
	if cfg.OIDCIssuer != "" {
		oidcClient = oidc.NewClient(cfg)
	}
	authMW := middleware.Auth(userRepo, jwksManager, middleware.AuthConfig{
		Issuer:     cfg.OIDCIssuer,
		JWKSURL:    cfg.OIDCJWKSURL,
		AllowGuest: true,
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(oidcClient)
	taskHandler := handlers.NewTaskHandler(syncStore, aiProvider, zapLogger)
	chatHandler := handlers.NewChatHandler(chatService, syncStore, zapLogger)
	roadmapHandler := handlers.NewRoadmapHandler(syncStore, profileRepo, aiProvider, zapLogger)
	journalHandler := handlers.NewJournalHandler(aiProvider, zapLogger)
	inboxHandler := handlers.NewInboxHandler(inboxRepo)
	onboardingHandler := handlers.NewOnboardingHandler(profileRepo, jobQueue, zapLogger)
	syncHandler := handlers.NewSyncHandler(syncStore, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, jobQueue)

	// Router and middleware. gorilla/mux runs Use() middleware in
	// registration order, outermost first.
	r := mux.NewRouter()
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("syntra-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Login config is public; everything under /auth/me needs a user
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	loginRouter := authRouter.PathPrefix("/oidc").Subrouter()
	loginRouter.Use(rateLimitMW)
	loginRouter.HandleFunc("/login", authHandler.GetOIDCLogin).Methods("GET")

	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(authMW)
	protectedAuthRouter.Use(rateLimitMW)
	protectedAuthRouter.HandleFunc("/me", authHandler.GetMe).Methods("GET")

	protect := func(prefix string, register func(*mux.Router)) {
		sub := apiRouter.PathPrefix(prefix).Subrouter()
		sub.Use(authMW)
		sub.Use(rateLimitMW)
		register(sub)
	}
	protect("/onboarding", onboardingHandler.RegisterRoutes)
	protect("/tasks", taskHandler.RegisterRoutes)
	protect("/chat", chatHandler.RegisterRoutes)
	protect("/roadmap", roadmapHandler.RegisterRoutes)
	protect("/journal", journalHandler.RegisterRoutes)
	protect("/inbox", inboxHandler.RegisterRoutes)
	protect("/sync", syncHandler.RegisterRoutes)

	// Preflight requests get a bare 204; CORS headers are set upstream
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

	// DLQ garbage collection when the queue supports it
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(watchCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	watchCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ with exponential backoff. The server can run
// without the queue; welcome emails are simply skipped.
func connectQueue(cfg *config.Config, zapLogger *zap.Logger) queue.JobQueue {
	if cfg.RabbitMQURL == "" {
		zapLogger.Warn("rabbitmq_not_configured_jobs_disabled")
		return nil
	}

	const maxRetries = 10
	const initialDelay = 2 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

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

	zapLogger.Warn("rabbitmq_unavailable_jobs_disabled")
	return nil
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
