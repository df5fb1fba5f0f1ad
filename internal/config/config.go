package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL       string
	ServerPort        string
	BaseURL           string
	FrontendURL       string
	EnableHSTS        bool
	RedisURL          string
	RateLimit         string
	RabbitMQURL       string
	RabbitMQPrefetch  int
	WorkerDebugMode   bool
	ServerDebugMode   bool
	OTELEnabled       bool
	OTELEndpoint      string
	OTELInsecure      bool
	OTELSampleRatio   float64
	WorkerMetricsPort string
	DLQRetention      time.Duration
	ReloadInterval    time.Duration
	JWTSecret         string
	JWTIssuer         string
	MigrateOnStart    bool
	RetagOnUpdate     bool
	Preferences       PreferenceConfig
}

// PreferenceConfig tunes the tag preference model.
type PreferenceConfig struct {
	Step           float64
	DecayRate      float64
	SeedWeight     float64
	ColdStartLimit int
}

// DefaultPreferenceConfig returns the weights used when nothing is configured.
func DefaultPreferenceConfig() PreferenceConfig {
	return PreferenceConfig{
		Step:           0.1,
		DecayRate:      0.05,
		SeedWeight:     0.5,
		ColdStartLimit: 10,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	defaults := DefaultPreferenceConfig()
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		RedisURL:          getEnv("REDIS_URL", ""),
		RateLimit:         getEnv("RATE_LIMIT", "20-S"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:  getEnvInt("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:   getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:      getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELSampleRatio:   getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		WorkerMetricsPort: getEnv("WORKER_METRICS_PORT", "9091"),
		DLQRetention:      getEnvDuration("DLQ_RETENTION", 24*time.Hour),
		ReloadInterval:    getEnvDuration("CONFIG_RELOAD_INTERVAL", 30*time.Second),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", ""),
		MigrateOnStart:    getEnvBool("MIGRATE_ON_START", true),
		RetagOnUpdate:     getEnvBool("RETAG_ON_UPDATE", false),
		Preferences: PreferenceConfig{
			Step:           getEnvFloat("PREFERENCE_STEP", defaults.Step),
			DecayRate:      getEnvFloat("PREFERENCE_DECAY_RATE", defaults.DecayRate),
			SeedWeight:     getEnvFloat("PREFERENCE_SEED_WEIGHT", defaults.SeedWeight),
			ColdStartLimit: getEnvInt("COLD_START_LIMIT", defaults.ColdStartLimit),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.DLQRetention <= 0 {
		return nil, fmt.Errorf("DLQ_RETENTION must be positive, got %s", cfg.DLQRetention)
	}
	if cfg.ReloadInterval <= 0 {
		return nil, fmt.Errorf("CONFIG_RELOAD_INTERVAL must be positive, got %s", cfg.ReloadInterval)
	}

	if err := cfg.Preferences.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireQueue reports an error when no RabbitMQ URL is configured.
// The worker and the retag command cannot run without one.
func (c *Config) RequireQueue() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for retag jobs")
	}
	return nil
}

// Validate checks that the preference knobs are in range.
func (p PreferenceConfig) Validate() error {
	if p.Step <= 0 || p.Step > 1 {
		return fmt.Errorf("PREFERENCE_STEP must be in (0, 1], got %v", p.Step)
	}
	if p.DecayRate < 0 || p.DecayRate >= 1 {
		return fmt.Errorf("PREFERENCE_DECAY_RATE must be in [0, 1), got %v", p.DecayRate)
	}
	if p.SeedWeight < 0 || p.SeedWeight > 1 {
		return fmt.Errorf("PREFERENCE_SEED_WEIGHT must be in [0, 1], got %v", p.SeedWeight)
	}
	if p.ColdStartLimit < 1 {
		return fmt.Errorf("COLD_START_LIMIT must be positive, got %d", p.ColdStartLimit)
	}
	return nil
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
