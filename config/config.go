package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port       string
	AppEnv     string
	LogLevel   string
	CORSOrigin string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	RabbitMQURL string

	PaymentSuccessURL string

	DefaultEventTitle    string
	DefaultEventCapacity int
	DefaultTicketPrice   decimal.Decimal
	DefaultCurrency      string

	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
}

func LoadConfig() (*Config, error) {
	price, err := decimal.NewFromString(getEnv("DEFAULT_TICKET_PRICE", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TICKET_PRICE: %w", err)
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     getEnvAsDuration("JWT_TTL", 24*time.Hour),
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@museo.com"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Museo La Unidad"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		PaymentSuccessURL: getEnv("PAYMENT_SUCCESS_URL", "http://localhost:8080/success"),

		DefaultEventTitle:    getEnv("DEFAULT_EVENT_TITLE", "General Admission"),
		DefaultEventCapacity: getEnvAsInt("DEFAULT_EVENT_CAPACITY", 10000),
		DefaultTicketPrice:   price,
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "ARS"),

		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminFirstName: getEnv("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  getEnv("ADMIN_LAST_NAME", "Museo"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsProduction selects JSON logs and gin release mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
