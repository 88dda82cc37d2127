package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	Store       string // "memory" or "postgres"
	DatabaseURL string
	TablePrefix string
	SeedFile    string
	// Event relay and search
	RedisURL       string
	MeiliURL       string
	MeiliMasterKey string
	// Executed document archive (S3 / MinIO)
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	// Query analysis
	AnthropicAPIKey  string
	GeminiAPIKey     string
	DefaultModel     string
	QueryTimeout     time.Duration
	QueryConcurrency int64
	// Auth
	JWKSURL   string
	DevUserID string
	DevAuthor string
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		Store:       getEnv("STORE", "memory"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		SeedFile:    getEnv("SEED_FILE", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		MeiliURL:       getEnv("MEILI_URL", ""),
		MeiliMasterKey: getEnv("MEILI_MASTER_KEY", ""),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		DefaultModel:     getEnv("DEFAULT_MODEL", "gpt-4"),
		QueryTimeout:     time.Duration(getEnvInt("QUERY_TIMEOUT_SECONDS", 30)) * time.Second,
		QueryConcurrency: int64(getEnvInt("QUERY_CONCURRENCY", 4)),

		JWKSURL:   getEnv("AUTH_JWKS_URL", ""),
		DevUserID: getEnv("DEV_USER_ID", "lawyer-1"),
		DevAuthor: getEnv("DEV_AUTHOR", "Sarah Chen"),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// S3Enabled reports whether the executed-document archive is configured
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Endpoint != ""
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
