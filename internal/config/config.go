package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Quote   QuoteConfig
	Refresh RefreshConfig
	IBKR    IBKRConfig
	Log     LogConfig
	CORS    CORSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// StorageConfig selects and configures the key-value store backing the ledger.
type StorageConfig struct {
	Driver        string
	Path          string // SQLite database file
	RedisURL      string
	KeyPrefix     string
	EncryptionKey string // base64 fernet key; empty disables encryption at rest
}

// QuoteConfig holds the quote provider settings.
type QuoteConfig struct {
	PolygonAPIKey  string
	PolygonBaseURL string
	YahooBaseURL   string
	Timeout        time.Duration
	Concurrency    int
}

// RefreshConfig holds the scheduled refresh setting: "manual", "5", "10" or "15" minutes.
type RefreshConfig struct {
	Frequency string
}

// IBKRConfig holds the Flex Web Service credentials used to import trades.
type IBKRConfig struct {
	FlexToken   string
	FlexQueryID int
	BaseURL     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds a preflight may be cached
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("QUOTE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TIMEOUT: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnv("QUOTE_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("invalid QUOTE_CONCURRENCY: must be a positive integer")
	}

	corsMaxAge, err := strconv.Atoi(getEnv("CORS_MAX_AGE", "300"))
	if err != nil || corsMaxAge < 0 {
		return nil, fmt.Errorf("invalid CORS_MAX_AGE: must be a non-negative integer")
	}

	queryID, err := strconv.Atoi(getEnv("IBKR_FLEX_QUERY_ID", "0"))
	if err != nil || queryID < 0 {
		return nil, fmt.Errorf("invalid IBKR_FLEX_QUERY_ID: must be a non-negative integer")
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
			Path:          getEnv("DB_PATH", "./data/option_ledger.db"),
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			KeyPrefix:     getEnv("STORAGE_KEY_PREFIX", "option-ledger:"),
			EncryptionKey: os.Getenv("STORAGE_ENCRYPTION_KEY"),
		},
		Quote: QuoteConfig{
			PolygonAPIKey:  os.Getenv("POLYGON_API_KEY"),
			PolygonBaseURL: getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
			YahooBaseURL:   getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			Timeout:        timeout,
			Concurrency:    concurrency,
		},
		Refresh: RefreshConfig{
			Frequency: strings.ToLower(getEnv("REFRESH_FREQUENCY", "manual")),
		},
		IBKR: IBKRConfig{
			FlexToken:   os.Getenv("IBKR_FLEX_TOKEN"),
			FlexQueryID: queryID,
			BaseURL:     os.Getenv("IBKR_BASE_URL"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
			AllowedMethods:   splitList(strings.ToUpper(getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"))),
			AllowedHeaders:   splitList(getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization")),
			AllowCredentials: getEnv("CORS_ALLOW_CREDENTIALS", "true") == "true",
			MaxAge:           corsMaxAge,
		},
	}

	switch config.Storage.Driver {
	case StorageSQLite, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: must be sqlite, redis or memory", config.Storage.Driver)
	}

	switch config.Refresh.Frequency {
	case "manual", "5", "10", "15":
	default:
		return nil, fmt.Errorf("invalid REFRESH_FREQUENCY %q: must be manual, 5, 10 or 15", config.Refresh.Frequency)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
