package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	// Leave engine
	LeaveCallTimeout time.Duration
	LockTimeout      time.Duration
	DefaultPaidCap   string
	SickGrant        string
	CasualGrant      string

	// Accrual
	AccrualCron         string
	AccrualTiers        string
	AccrualFlatDays     string
	AccrualMaxRetries   int
	AccrualRetryBackoff time.Duration
	AccrualLeaseTTL     time.Duration

	// Notifications
	NotifyWorkers      int
	NotifyBatchSize    int
	NotifyPollInterval time.Duration
	NotifyMaxAttempts  int
	NotifyRetryBase    time.Duration
	NotifyRetryMax     time.Duration
	NotifyClaimTTL     time.Duration
	NotifyRetention    time.Duration
	NotifyLocale       string

	MailDriver   string
	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	RateLimitRPS   float64
	RateLimitBurst int

	// CORSOrigins lists the front-end origins allowed to call the API.
	CORSOrigins []string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "3000"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "hris_leave"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: getEnv("KAFKA_BROKER", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		LeaveCallTimeout: getDuration("LEAVE_CALL_TIMEOUT", 5*time.Second),
		LockTimeout:      getDuration("LEAVE_LOCK_TIMEOUT", 2*time.Second),
		DefaultPaidCap:   getEnv("LEAVE_DEFAULT_PAID_CAP", "24.00"),
		SickGrant:        getEnv("LEAVE_SICK_GRANT", "12.00"),
		CasualGrant:      getEnv("LEAVE_CASUAL_GRANT", "6.00"),

		AccrualCron:         getEnv("ACCRUAL_CRON", "0 0 1 * *"),
		AccrualTiers:        getEnv("ACCRUAL_TIERS", "0:1.25,3000:1.50,6000:2.00"),
		AccrualFlatDays:     getEnv("ACCRUAL_FLAT_DAYS", "1.50"),
		AccrualMaxRetries:   getInt("ACCRUAL_MAX_RETRIES", 3),
		AccrualRetryBackoff: getDuration("ACCRUAL_RETRY_BACKOFF", 500*time.Millisecond),
		AccrualLeaseTTL:     getDuration("ACCRUAL_LEASE_TTL", 30*time.Minute),

		NotifyWorkers:      getInt("NOTIFY_WORKERS", 4),
		NotifyBatchSize:    getInt("NOTIFY_BATCH_SIZE", 50),
		NotifyPollInterval: getDuration("NOTIFY_POLL_INTERVAL", 3*time.Second),
		NotifyMaxAttempts:  getInt("NOTIFY_MAX_ATTEMPTS", 5),
		NotifyRetryBase:    getDuration("NOTIFY_RETRY_BASE", 2*time.Second),
		NotifyRetryMax:     getDuration("NOTIFY_RETRY_MAX", 5*time.Minute),
		NotifyClaimTTL:     getDuration("NOTIFY_CLAIM_TTL", time.Minute),
		NotifyRetention:    getDuration("NOTIFY_RETENTION", 30*24*time.Hour),
		NotifyLocale:       getEnv("NOTIFY_LOCALE", "en"),

		MailDriver:   strings.ToLower(getEnv("MAIL_DRIVER", "log")),
		MailFrom:     getEnv("MAIL_FROM", "hr-noreply@localhost"),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),

		CORSOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
