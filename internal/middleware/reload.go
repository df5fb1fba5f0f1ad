package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/models"
	"github.com/campify/campify-api/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	defaultRatelimitRate = "20-S"
	defaultCORSOrigin    = "http://localhost:3000"
)

// CorsConfigStore is the persistence a CORS reloader reads.
type CorsConfigStore interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// RatelimitConfigStore is the persistence a rate limit reloader reads and seeds.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Reloader rebuilds a wrapping middleware from stored settings on an
// interval and swaps it in without dropping requests.
type Reloader struct {
	name     string
	build    func(ctx context.Context) func(http.Handler) http.Handler
	log      *zap.Logger
	interval time.Duration

	mu      sync.RWMutex
	current func(http.Handler) http.Handler
}

func newReloader(name string, log *zap.Logger, interval time.Duration, build func(ctx context.Context) func(http.Handler) http.Handler) *Reloader {
	r := &Reloader{name: name, log: log, interval: interval, build: build}
	r.load(context.Background())
	return r
}

// Middleware wraps next with whatever the latest load produced. The wrapper
// is looked up per request; Middleware itself never touches the store.
func (r *Reloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			wrap := r.current
			r.mu.RUnlock()
			if wrap == nil {
				next.ServeHTTP(w, req)
				return
			}
			wrap(next).ServeHTTP(w, req)
		})
	}
}

// Start reloads on every tick until ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *Reloader) load(ctx context.Context) {
	wrap := r.build(ctx)
	if wrap == nil {
		return
	}
	r.mu.Lock()
	r.current = wrap
	r.mu.Unlock()
	r.log.Debug("middleware_reloaded", zap.String("middleware", r.name))
}

// NewCORSReloader serves CORS from the stored policy. fallbackOrigins
// (comma-separated) applies when nothing is stored.
func NewCORSReloader(store CorsConfigStore, fallbackOrigins string, log *zap.Logger, interval time.Duration) *Reloader {
	return newReloader("cors", log, interval, func(ctx context.Context) func(http.Handler) http.Handler {
		origins := database.AllowedOriginsSlice(fallbackOrigins)
		allowCreds, maxAge := true, 86400

		cfg, err := store.Get(ctx)
		if err != nil {
			log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
		} else if cfg != nil {
			origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
			allowCreds, maxAge = cfg.AllowCredentials, cfg.MaxAge
		}
		if len(origins) == 0 {
			origins = []string{defaultCORSOrigin}
		}

		return cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowCredentials: allowCreds,
			MaxAge:           maxAge,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		}).Handler
	})
}

// NewRateLimitReloader throttles per client IP with ulule/limiter on Redis.
// The stored rate wins over defaultRate; defaultRate is saved when nothing
// is stored yet.
func NewRateLimitReloader(redisClient *redis.Client, store RatelimitConfigStore, defaultRate string, log *zap.Logger, interval time.Duration) (*Reloader, error) {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	fallback, err := limiter.NewRateFromFormatted(defaultRate)
	if err != nil {
		return nil, err
	}
	limitStore, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "campify_ratelimit"})
	if err != nil {
		return nil, err
	}

	return newReloader("ratelimit", log, interval, func(ctx context.Context) func(http.Handler) http.Handler {
		rate := fallback
		cfg, err := store.Get(ctx)
		switch {
		case err != nil:
			log.Warn("failed_to_load_ratelimit_config_using_default", zap.Error(err), zap.String("default_rate", defaultRate))
		case cfg == nil || cfg.Rate == "":
			if err := store.Set(ctx, &models.RatelimitConfig{Rate: defaultRate}); err != nil {
				log.Error("failed_to_save_default_ratelimit_config", zap.Error(err))
			}
		default:
			parsed, err := limiter.NewRateFromFormatted(cfg.Rate)
			if err != nil {
				log.Error("failed_to_parse_rate_limit_using_default", zap.Error(err), zap.String("rate", cfg.Rate))
			} else {
				rate = parsed
			}
		}

		return stdlibmw.NewMiddleware(limiter.New(limitStore, rate), stdlibmw.WithKeyGetter(request.ClientIP)).Handler
	}), nil
}
