package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	UploadBackendLocal = "local"
	UploadBackendFTP   = "ftp"

	// DefaultMaxUploadBytes - 5 MiB
	DefaultMaxUploadBytes int64 = 5 << 20
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"incident_reports"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Access gate
	AdminSecret string `env:"ADMIN_SECRET"`
	AdminHeader string `env:"ADMIN_HEADER" envDefault:"X-Admin-Secret"`

	// Redis Config
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Upload Config
	UploadBackend   string `env:"UPLOAD_BACKEND" envDefault:"local"`
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// FTP Config
	FTPHost          string `env:"FTP_HOST"`
	FTPPort          string `env:"FTP_PORT" envDefault:"21"`
	FTPUser          string `env:"FTP_USER"`
	FTPPassword      string `env:"FTP_PASSWORD"`
	FTPFolder        string `env:"FTP_FOLDER" envDefault:"incidents"`
	FTPPublicBaseURL string `env:"FTP_PUBLIC_BASE_URL"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		MongoDatabase:     getEnv("MONGO_DATABASE", "incident_reports"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AdminSecret:       os.Getenv("ADMIN_SECRET"),
		AdminHeader:       getEnv("ADMIN_HEADER", "X-Admin-Secret"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		CacheTTL:          getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		UploadBackend:     strings.ToLower(getEnv("UPLOAD_BACKEND", UploadBackendLocal)),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPrefix:   strings.TrimRight(getEnv("UPLOAD_URL_PREFIX", "/uploads"), "/"),
		MaxUploadBytes:    getEnvAsInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		FTPHost:           os.Getenv("FTP_HOST"),
		FTPPort:           getEnv("FTP_PORT", "21"),
		FTPUser:           os.Getenv("FTP_USER"),
		FTPPassword:       os.Getenv("FTP_PASSWORD"),
		FTPFolder:         strings.Trim(getEnv("FTP_FOLDER", "incidents"), "/"),
		FTPPublicBaseURL:  strings.TrimRight(os.Getenv("FTP_PUBLIC_BASE_URL"), "/"),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET environment variable is required")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.UploadBackend {
	case UploadBackendLocal:
	case UploadBackendFTP:
		if c.FTPHost == "" {
			return fmt.Errorf("FTP_HOST is required when UPLOAD_BACKEND=ftp")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_BACKEND %q", c.UploadBackend)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
