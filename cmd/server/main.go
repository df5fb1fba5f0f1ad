package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campify/campify-api/api"
	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/handlers"
	"github.com/campify/campify-api/internal/logger"
	"github.com/campify/campify-api/internal/metrics"
	"github.com/campify/campify-api/internal/middleware"
	"github.com/campify/campify-api/internal/queue"
	"github.com/campify/campify-api/internal/services/auth"
	"github.com/campify/campify-api/internal/services/recommend"
	"github.com/campify/campify-api/internal/tagging"
	"github.com/campify/campify-api/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "campify-api"

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag
	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", Version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("auth_enabled", cfg.JWTSecret != ""),
		zap.Bool("rate_limit_enabled", cfg.RedisURL != ""),
	)

	if err := tagging.ValidateRules(); err != nil {
		zapLogger.Fatal("invalid_tagging_rules", zap.Error(err))
	}

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
				ServiceName:    serviceName,
				ServiceVersion: Version,
				Endpoint:       cfg.OTELEndpoint,
				Insecure:       cfg.OTELInsecure,
				SampleRatio:    cfg.OTELSampleRatio,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			zapLogger.Fatal("failed_to_apply_migrations", zap.Error(err))
		}
		zapLogger.Info("migrations_applied")
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

	userRepo := database.NewUserRepository(db)
	tagRepo := database.NewTagRepository(db)
	routeRepo := database.NewRouteRepository(db)
	prefRepo := database.NewPreferenceRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	if cfg.MigrateOnStart {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, created, err := tagRepo.Ensure(seedCtx, tagging.Vocabulary())
		seedCancel()
		if err != nil {
			zapLogger.Fatal("failed_to_seed_tag_vocabulary", zap.Error(err))
		}
		zapLogger.Info("tag_vocabulary_seeded", zap.Int("created", created))
	}

	healthChecks := map[string]handlers.HealthCheckFunc{"database": db.HealthCheck}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var jobs handlers.JobEnqueuer
	if cfg.RabbitMQURL != "" {
		jobQueue := connectQueue(cfg.RabbitMQURL, zapLogger)
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		jobs = jobQueue
		healthChecks["queue"] = jobQueue.HealthCheck
	}

	updater := recommend.NewUpdater(userRepo, routeRepo, prefRepo, cfg.Preferences, zapLogger)
	ranker := recommend.NewRanker(userRepo, prefRepo, routeRepo, cfg.Preferences.ColdStartLimit, zapLogger)

	routeHandler := handlers.NewRouteHandler(routeRepo, jobs, cfg.RetagOnUpdate, zapLogger)
	tagHandler := handlers.NewTagHandler(tagRepo, zapLogger)
	userHandler := handlers.NewUserHandler(userRepo, prefRepo, ranker, zapLogger)
	preferenceHandler := handlers.NewPreferenceHandler(updater, zapLogger)
	healthChecker := handlers.NewHealthChecker(healthChecks, zapLogger)
	openAPIHandler, err := handlers.NewOpenAPIHandler(api.OpenAPI)
	if err != nil {
		zapLogger.Fatal("invalid_openapi_document", zap.Error(err))
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first is outermost
	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, cfg.ReloadInterval)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, zapLogger))
	r.Use(middleware.ContentType(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", versionInfo).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	var rateLimitReloader *middleware.Reloader
	if redisClient != nil {
		rateLimitReloader, err = middleware.NewRateLimitReloader(redisClient, ratelimitConfigRepo, cfg.RateLimit, zapLogger, cfg.ReloadInterval)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		apiRouter.Use(rateLimitReloader.Middleware())
	}
	if cfg.JWTSecret != "" {
		apiRouter.Use(middleware.Auth(auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer), zapLogger))
	}

	routeHandler.RegisterRoutes(apiRouter.PathPrefix("/routes").Subrouter())
	tagHandler.RegisterRoutes(apiRouter.PathPrefix("/tags").Subrouter())
	userHandler.RegisterRoutes(apiRouter.PathPrefix("/users").Subrouter())
	preferenceHandler.RegisterRoutes(apiRouter.PathPrefix("/preferences").Subrouter())

	// preflight requests reach the CORS middleware through this route
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	if rateLimitReloader != nil {
		go rateLimitReloader.Start(reloadCtx)
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ with exponential backoff so the API can start
// alongside a broker that is still booting.
func connectQueue(url string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	const (
		maxRetries   = 10
		initialDelay = 2 * time.Second
		maxDelay     = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}
		lastErr = err

		delay := min(initialDelay*time.Duration(1<<uint(attempt)), maxDelay)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(lastErr))
	return nil
}

func versionInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service":   serviceName,
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
