package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Paddle  PaddleConfig
	Mail    MailConfig
	Redis   RedisConfig
	Webhook WebhookConfig

	// Warnings collects non-fatal problems found while loading, for the
	// caller to log once a logger exists.
	Warnings []string
}

type ServerConfig struct {
	Port         string
	Env          string
	LogLevel     string
	PublicDomain string
	AllowOrigin  string
}

type PaddleConfig struct {
	APIKey             string
	WebhookSecret      string
	Environment        string
	ClientToken        string
	PriceID            string
	SignatureTolerance time.Duration
}

type MailConfig struct {
	APIKey       string
	Domain       string
	BrandName    string
	SalesAddress string
	ContactInbox string
}

type RedisConfig struct {
	URL               string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type WebhookConfig struct {
	DedupEnabled bool
	DedupTTL     time.Duration
}

// Load reads .env (if present) and the process environment. Provider
// credentials are optional here; their absence is reported per request.
func Load() *Config {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, fmt.Sprintf("error loading .env file: %v", err))
	}

	contactInbox := os.Getenv("CONTACT_EMAIL")
	if contactInbox == "" {
		contactInbox = os.Getenv("SALES_NOTIFICATION_EMAIL")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			PublicDomain: strings.TrimRight(getEnv("PUBLIC_DOMAIN", "http://localhost:3000"), "/"),
			AllowOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
		},
		Paddle: PaddleConfig{
			APIKey:             os.Getenv("PADDLE_API_KEY"),
			WebhookSecret:      os.Getenv("PADDLE_WEBHOOK_SECRET"),
			Environment:        getEnv("PADDLE_ENVIRONMENT", "sandbox"),
			ClientToken:        os.Getenv("PADDLE_CLIENT_TOKEN"),
			PriceID:            os.Getenv("PADDLE_PRICE_ID"),
			SignatureTolerance: getDuration("PADDLE_SIGNATURE_TOLERANCE", 5*time.Second),
		},
		Mail: MailConfig{
			APIKey:       os.Getenv("RESEND_API_KEY"),
			Domain:       getEnv("MAIL_DOMAIN", "vorve.tech"),
			BrandName:    getEnv("BRAND_NAME", "Vorve.tech"),
			SalesAddress: os.Getenv("SALES_NOTIFICATION_EMAIL"),
			ContactInbox: contactInbox,
		},
		Redis: RedisConfig{
			URL:               os.Getenv("REDIS_URL"),
			RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 10),
			RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Webhook: WebhookConfig{
			DedupEnabled: getBool("WEBHOOK_DEDUP_ENABLED", false),
			DedupTTL:     getDuration("WEBHOOK_DEDUP_TTL", 72*time.Hour),
		},
		Warnings: warnings,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
