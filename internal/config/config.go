// Package config loads server settings from the environment, with a
// .env file picked up in development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config is every knob the server reads at startup. DatabaseURL and
// RedisURL may be empty; the server then runs without persistence.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	BotEnabled  bool
	BotDelayMs  int
	LogLevel    string
}

// Load reads the environment. A missing .env is not an error.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env file")
	}
	return Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		BotEnabled:  getBool("BOT_ENABLED", true),
		BotDelayMs:  getInt("BOT_DELAY_MS", 1200),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.WithField("key", key).Warn("invalid boolean env value, using default")
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("key", key).Warn("invalid integer env value, using default")
		return fallback
	}
	return n
}
