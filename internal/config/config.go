package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Result store drivers.
const (
	ResultStoreRedis  = "redis"
	ResultStoreSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// DatabaseURL enables the PostgreSQL result archive and flag table.
	// Empty disables both.
	DatabaseURL string
	MaxDBConns  int32
	RedisURL    string

	// ResultStore selects where learner histories live: "redis" or "sqlite".
	ResultStore string
	SQLitePath  string
	// HistoryLimit caps each learner's history to the most recent N results.
	// Zero keeps every result.
	HistoryLimit int

	QuestionAPIURL     string
	PracticeExamAPIURL string
	QuestionAPIKey     string
	ProviderTimeout    time.Duration

	ChatAPIURL        string
	ChatAPIKey        string
	ChatModel         string
	ChatMaxTokens     int
	ChatTemperature   float64
	ChatRatePerMinute int

	SessionIdleTimeout time.Duration
	// SnapshotTTL bounds how long an untouched session can still be resumed
	// after it has left memory.
	SnapshotTTL time.Duration

	// APIKey, when set, is required in the x-api-key header of every API call.
	APIKey string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "pretty"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MaxDBConns:  int32(getEnvInt("MAX_DB_CONNS", 8)),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		ResultStore:  strings.ToLower(getEnv("RESULT_STORE", ResultStoreRedis)),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/certprep.db"),
		HistoryLimit: getEnvInt("RESULT_HISTORY_LIMIT", 100),

		QuestionAPIURL:     getEnv("QUESTION_API_URL", "http://localhost:9000/questions"),
		PracticeExamAPIURL: getEnv("PRACTICE_EXAM_API_URL", "http://localhost:9000/practice-exam"),
		QuestionAPIKey:     getEnv("QUESTION_API_KEY", ""),
		ProviderTimeout:    time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,

		ChatAPIURL:        getEnv("CHAT_API_URL", "https://api.openai.com/v1/chat/completions"),
		ChatAPIKey:        getEnv("CHAT_API_KEY", ""),
		ChatModel:         getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
		ChatMaxTokens:     getEnvInt("CHAT_MAX_TOKENS", 150),
		ChatTemperature:   getEnvFloat("CHAT_TEMPERATURE", 0.7),
		ChatRatePerMinute: getEnvInt("CHAT_RATE_PER_MINUTE", 20),

		SessionIdleTimeout: time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
		SnapshotTTL:        time.Duration(getEnvInt("SESSION_SNAPSHOT_HOURS", 24)) * time.Hour,

		APIKey:         getEnv("API_KEY", ""),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// parseList splits a comma-separated string into a trimmed slice.
// Returns nil if the input is empty.
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
