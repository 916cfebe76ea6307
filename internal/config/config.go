package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret []byte

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	AWSRegion string
	S3Bucket  string

	GeminiAPIKey string

	SendGridAPIKey string
	MailFromName   string
	MailFromAddr   string

	CheckoutAPIURL string
	CheckoutAPIKey string
	ReturnDomain   string

	AdminEmails []string

	TryOnDailyLimit int
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		AWSRegion: EnvDefault("AWS_REGION", "eu-central-1"),
		S3Bucket:  os.Getenv("S3_BUCKET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromName:   EnvDefault("MAIL_FROM_NAME", "Obsidian Atelier"),
		MailFromAddr:   EnvDefault("MAIL_FROM_ADDR", "no-reply@obsidianatelier.com"),

		CheckoutAPIURL: os.Getenv("CHECKOUT_API_URL"),
		CheckoutAPIKey: os.Getenv("CHECKOUT_API_KEY"),
		ReturnDomain:   os.Getenv("RETURN_DOMAIN"),

		AdminEmails: CSV(os.Getenv("ADMIN_EMAILS")),

		TryOnDailyLimit: EnvIntDefault("TRYON_DAILY_LIMIT", 3),
	}
}

// MustLoad is Load plus fail-fast checks for the values the server
// cannot run without.
func MustLoad() Config {
	cfg := Load()

	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	MustNonEmpty(cfg.S3Bucket, "S3_BUCKET")

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
