package config

import (
	"log"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

// StripeConfig points at the external checkout-session function and the
// per-plan price identifiers it expects.
type StripeConfig struct {
	CheckoutFunctionURL string
	WebhookSecret       string
	PriceStarter        string
	PricePro            string
	PriceEnterprise     string
	SuccessURL          string
	CancelURL           string
}

// MailConfig points at the external mail-dispatch function. Delivery is
// entirely on its side; we only post batches to it.
type MailConfig struct {
	FunctionURL string
	APIKey      string
	FromName    string
	FromEmail   string
	ResetURL    string
}

type AppConfig struct {
	Port     string
	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
	Stripe   StripeConfig
	Mail     MailConfig

	ExportDir         string
	FilesPublicPrefix string
	ExternalURL       string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8020"),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "paymentflow"),
			Password: getenv("PG_PASSWORD", ""),
			DBName:   getenv("PG_DB", "paymentflow"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "paymentflow_"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "invoices"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
		},
		Stripe: StripeConfig{
			CheckoutFunctionURL: getenv("STRIPE_CHECKOUT_FUNCTION_URL", ""),
			WebhookSecret:       getenv("STRIPE_WEBHOOK_SECRET", ""),
			PriceStarter:        getenv("STRIPE_PRICE_STARTER", ""),
			PricePro:            getenv("STRIPE_PRICE_PRO", ""),
			PriceEnterprise:     getenv("STRIPE_PRICE_ENTERPRISE", ""),
			SuccessURL:          getenv("STRIPE_SUCCESS_URL", "https://app.paymentflow.fr/dashboard?checkout=success"),
			CancelURL:           getenv("STRIPE_CANCEL_URL", "https://app.paymentflow.fr/pricing"),
		},
		Mail: MailConfig{
			FunctionURL: getenv("MAIL_FUNCTION_URL", ""),
			APIKey:      getenv("MAIL_API_KEY", ""),
			FromName:    getenv("MAIL_FROM_NAME", "PaymentFlow"),
			FromEmail:   getenv("MAIL_FROM_EMAIL", "no-reply@paymentflow.fr"),
			ResetURL:    getenv("MAIL_RESET_URL", "https://app.paymentflow.fr/reset-password"),
		},
		ExportDir:         getenv("EXPORT_DIR", "./exports"),
		FilesPublicPrefix: getenv("FILES_PUBLIC_PREFIX", "/files"),
		ExternalURL:       getenv("EXTERNAL_URL", ""),
	}
}
