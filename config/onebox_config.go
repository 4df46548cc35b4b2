package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Storage
	MongoDBURL   string
	MongoDBName  string
	RedisURL     string
	DataDir      string
	AccountsFile string
	SettingsFile string

	// Encryption
	EncryptionKey string

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// IMAP ingest
	IMAPLookbackDays     int
	IMAPWatchRetry       time.Duration
	IMAPDialTimeout      time.Duration
	ClassifyCacheTTLHour int

	// Notifications
	SlackWebhookURL    string
	ExternalWebhookURL string
	WebhookTimeoutSec  int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Storage
		MongoDBURL:   getEnv("MONGODB_URL", ""),
		MongoDBName:  getEnv("MONGODB_DATABASE", "onebox"),
		RedisURL:     getEnv("REDIS_URL", ""),
		DataDir:      getEnv("DATA_DIR", "data"),
		AccountsFile: getEnv("ACCOUNTS_FILE", "accounts.json"),
		SettingsFile: getEnv("SETTINGS_FILE", "settings.json"),

		// Encryption
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 512),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.0),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 60),

		// IMAP ingest
		IMAPLookbackDays:     getEnvInt("IMAP_LOOKBACK_DAYS", 7),
		IMAPWatchRetry:       time.Duration(getEnvInt("IMAP_WATCH_RETRY_SEC", 30)) * time.Second,
		IMAPDialTimeout:      time.Duration(getEnvInt("IMAP_DIAL_TIMEOUT_SEC", 30)) * time.Second,
		ClassifyCacheTTLHour: getEnvInt("CLASSIFY_CACHE_TTL_HOUR", 24),

		// Notifications
		SlackWebhookURL:    getEnv("SLACK_WEBHOOK_URL", ""),
		ExternalWebhookURL: getEnv("EXTERNAL_WEBHOOK_URL", ""),
		WebhookTimeoutSec:  getEnvInt("WEBHOOK_TIMEOUT_SEC", 10),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
