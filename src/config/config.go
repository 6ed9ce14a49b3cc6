package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=altess port=5432 sslmode=disable TimeZone=Europe/Paris"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	// Fallback billing period when Stripe cannot tell us the real one.
	DEFAULT_SUBSCRIPTION_PERIOD = 30 * 24 * time.Hour
	PROCESSED_EVENT_TTL         = 72 * time.Hour
)

func APIEnv() string {
	return os.Getenv("API_ENV")
}

func StripeSecretKey() string {
	return os.Getenv("STRIPE_SECRET_KEY")
}

func StripeWebhookSecret() string {
	return os.Getenv("STRIPE_WEBHOOK_SECRET")
}

// StripeWebhookSecretID names the Secrets Manager entry holding the signing
// secret when it is not passed in the environment directly.
func StripeWebhookSecretID() string {
	return os.Getenv("STRIPE_WEBHOOK_SECRET_ID")
}

func DataStoreServiceKey() string {
	return os.Getenv("DATA_STORE_SERVICE_KEY")
}

func NotifyTransport() string {
	t := os.Getenv("NOTIFY_TRANSPORT")
	if t == "" {
		return "http"
	}
	return t
}

func NotifyFunctionURL() string {
	return os.Getenv("NOTIFY_FUNCTION_URL")
}

func NotifyWorkers() int {
	return getInt("NOTIFY_WORKERS", 4)
}

func NotifyQueueSize() int {
	return getInt("NOTIFY_QUEUE_SIZE", 256)
}

func NotifyMaxAttempts() int {
	return getInt("NOTIFY_MAX_ATTEMPTS", 5)
}

func EmailQueue() string {
	q := os.Getenv("EMAIL_QUEUE")
	if q == "" {
		return "TicketEmails"
	}
	return q
}

func MailFrom() string {
	return os.Getenv("MAIL_FROM")
}

func AssetsBucket() string {
	return os.Getenv("S3_ASSETS_BUCKET")
}

func TempDir() string {
	dir := os.Getenv("TEMP_DIR")
	if dir == "" {
		return os.TempDir()
	}
	return dir
}

func Port() string {
	port := os.Getenv("PORT")
	if port == "" {
		return "8080"
	}
	return port
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// The marketplace front-end shares the database, so the webhook service keeps
// its pool small. Stripe retries anything that waits too long for a connection.
func DBMaxOpenConns() int {
	return getInt("DATABASE_MAX_OPEN_CONNS", 20)
}

func DBMaxIdleConns() int {
	return getInt("DATABASE_MAX_IDLE_CONNS", 5)
}

func DBConnMaxLifetime() time.Duration {
	d, err := time.ParseDuration(os.Getenv("DATABASE_CONN_MAX_LIFETIME"))
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func AppHost() string {
	return os.Getenv("APP_HOST")
}

// MaintenanceMode is on only when MAINTENANCE_MODE parses as true.
func MaintenanceMode() bool {
	on, err := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE"))
	return err == nil && on
}

func NotifyRetryInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("NOTIFY_RETRY_INTERVAL"))
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
