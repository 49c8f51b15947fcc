package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret          = "a-very-secret-key-should-be-longer-and-random"
	defaultConfirmationSecret = "default_insecure_confirmation_secret_please_change_this_!@#$"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	UseMemoryStore bool

	// Identity tokens issued by the auth service
	JWTSecret string
	JWTIssuer string

	// Step-up confirmation tokens
	ConfirmationTokenSecret string
	ConfirmationTokenMaxAge time.Duration

	// Escalation
	EscalationScanInterval       time.Duration
	DeadlinePendingReview        time.Duration
	DeadlineUnderReview          time.Duration
	DeadlinePendingAuthorization time.Duration
	MaxEscalationLevel           int
	HighValueThreshold           *decimal.Decimal

	// Store
	StoreMaxRetries   uint64
	StoreWriteTimeout time.Duration

	// Notifications
	NATSURL       string
	NotifyBuffer  int
	NotifyWorkers int

	// HTTP edge
	RedisURL           string
	RateLimit          string // ulule/limiter formatted rate, e.g. "100-M"
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("USE_MEMORY_STORE", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "withdrawal-approvals")
	v.SetDefault("CONFIRMATION_TOKEN_SECRET", defaultConfirmationSecret)
	v.SetDefault("CONFIRMATION_TOKEN_MAX_AGE", "5m")
	v.SetDefault("ESCALATION_SCAN_INTERVAL", "1m")
	v.SetDefault("DEADLINE_PENDING_REVIEW", "4h")
	v.SetDefault("DEADLINE_UNDER_REVIEW", "24h")
	v.SetDefault("DEADLINE_PENDING_AUTHORIZATION", "8h")
	v.SetDefault("MAX_ESCALATION_LEVEL", 5)
	v.SetDefault("HIGH_VALUE_THRESHOLD", "")
	v.SetDefault("STORE_MAX_RETRIES", 3)
	v.SetDefault("STORE_WRITE_TIMEOUT", "5s")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NOTIFY_BUFFER", 256)
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	cfg.UseMemoryStore = v.GetBool("USE_MEMORY_STORE")
	if cfg.DatabaseURL == "" && !cfg.UseMemoryStore {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = v.GetString("JWT_ISSUER")

	cfg.ConfirmationTokenSecret = v.GetString("CONFIRMATION_TOKEN_SECRET")
	if cfg.ConfirmationTokenSecret == "" || cfg.ConfirmationTokenSecret == defaultConfirmationSecret {
		cfg.ConfirmationTokenSecret = defaultConfirmationSecret
		log.Println("Warning: CONFIRMATION_TOKEN_SECRET is not set, using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}
	if cfg.IsProduction && (cfg.JWTSecret == defaultJWTSecret || cfg.ConfirmationTokenSecret == defaultConfirmationSecret) {
		return nil, fmt.Errorf("JWT_SECRET and CONFIRMATION_TOKEN_SECRET must be set in production")
	}

	cfg.ConfirmationTokenMaxAge = duration(v, "CONFIRMATION_TOKEN_MAX_AGE", 5*time.Minute)
	cfg.EscalationScanInterval = duration(v, "ESCALATION_SCAN_INTERVAL", time.Minute)
	cfg.DeadlinePendingReview = duration(v, "DEADLINE_PENDING_REVIEW", 4*time.Hour)
	cfg.DeadlineUnderReview = duration(v, "DEADLINE_UNDER_REVIEW", 24*time.Hour)
	cfg.DeadlinePendingAuthorization = duration(v, "DEADLINE_PENDING_AUTHORIZATION", 8*time.Hour)
	cfg.StoreWriteTimeout = duration(v, "STORE_WRITE_TIMEOUT", 5*time.Second)

	cfg.MaxEscalationLevel = v.GetInt("MAX_ESCALATION_LEVEL")
	if cfg.MaxEscalationLevel <= 0 {
		cfg.MaxEscalationLevel = 5
		log.Printf("Warning: Invalid value for MAX_ESCALATION_LEVEL. Defaulting to %d.\n", cfg.MaxEscalationLevel)
	}

	if raw := strings.TrimSpace(v.GetString("HIGH_VALUE_THRESHOLD")); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil || !threshold.IsPositive() {
			return nil, fmt.Errorf("invalid HIGH_VALUE_THRESHOLD %q", raw)
		}
		cfg.HighValueThreshold = &threshold
	}

	retries := v.GetInt("STORE_MAX_RETRIES")
	if retries < 0 {
		retries = 3
		log.Printf("Warning: Invalid value for STORE_MAX_RETRIES. Defaulting to %d.\n", retries)
	}
	cfg.StoreMaxRetries = uint64(retries)

	cfg.NATSURL = v.GetString("NATS_URL")
	if cfg.NATSURL == "" {
		log.Println("Warning: NATS_URL not set. Notifications will only be logged.")
	}
	cfg.NotifyBuffer = positiveInt(v, "NOTIFY_BUFFER", 256)
	cfg.NotifyWorkers = positiveInt(v, "NOTIFY_WORKERS", 2)

	cfg.RedisURL = v.GetString("REDIS_URL")
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// duration parses key as a Go duration (e.g. "90s", "4h"), falling back to def.
func duration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func positiveInt(v *viper.Viper, key string, def int) int {
	n := v.GetInt(key)
	if n <= 0 {
		log.Printf("Warning: Invalid value for %s. Defaulting to %d.\n", key, def)
		return def
	}
	return n
}
