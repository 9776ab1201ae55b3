package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/joy095/bookmarathon/logger"
)

// Config carries the environment-driven settings for the gateway. The
// upstream base URL is the single authoritative host; no endpoint is ever
// hardcoded elsewhere.
type Config struct {
	Port            string
	UpstreamBaseURL string
	UpstreamToken   string
	UpstreamTimeout time.Duration
	JWTSecret       string
	AdminAccessHash string
	RedisURL        string
}

// LoadEnv loads .env files for local development. Missing files are fine in
// deployed environments where variables come from the runtime.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.InfoLogger.Info("No .env file found, relying on environment variables")
	}
}

// Load reads the gateway configuration from the environment.
func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8081"),
		UpstreamBaseURL: mustGetEnv("UPSTREAM_BASE_URL"),
		UpstreamToken:   os.Getenv("UPSTREAM_TOKEN"),
		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT", 15)) * time.Second,
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AdminAccessHash: os.Getenv("ADMIN_ACCESS_HASH"),
		RedisURL:        os.Getenv("REDIS_URL"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.WarnLogger.Warnf("Invalid integer for %s: %q, using default %d", key, v, def)
		return def
	}
	return n
}

func mustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		logger.ErrorLogger.Errorf("Required environment variable %s is not set", key)
		os.Exit(1)
	}
	return v
}
